package attempt

import "strconv"

// Storage keys: kipimo/attempts/<owner>/<testID>.
// Owner is the username, or AnonymousOwner(deviceID) for not-logged-in
// sessions; an attempt is never keyed on an empty owner.
const keyNamespace = "kipimo/attempts"

const anonPrefix = "anon-"

// AnonymousOwner scopes a not-logged-in session's attempts to a stable
// device id so in-progress answers are not lost mid-session.
func AnonymousOwner(deviceID string) string {
	return anonPrefix + deviceID
}

func ownerPrefix(owner string) string {
	return keyNamespace + "/" + owner + "/"
}

func attemptKey(owner string, testID int) string {
	return ownerPrefix(owner) + strconv.Itoa(testID)
}
