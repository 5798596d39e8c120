package emailsvc

import (
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/trezcool/kipimo/core"
)

var (
	// SentMessages collects messages sent through mock services, for tests.
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
)

// consoleService writes messages to stdout; the DEV/TEST service.
type consoleService struct {
	defaultFromEmail mail.Address
	subjPrefix       string
	disableOutput    bool
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) core.EmailService {
	return &consoleService{
		defaultFromEmail: conf.DefaultFromEmail(),
		subjPrefix:       "[" + conf.AppName + "] ",
	}
}

// NewConsoleServiceMock sends synchronously and records to SentMessages
// without printing; for tests.
func NewConsoleServiceMock(conf *core.Config) core.EmailService {
	svc := NewConsoleService(conf).(*consoleService)
	svc.disableOutput = true
	return svc
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		svc.sendMessage(msg)
	}
}

func (svc consoleService) sendMessage(msg *core.EmailMessage) {
	if !msg.HasRecipients() || !msg.HasContent() {
		return
	}
	svc.send(*msg)
	mu.Lock()
	SentMessages = append(SentMessages, *msg)
	mu.Unlock()
}

func (svc consoleService) send(msg core.EmailMessage) {
	if svc.disableOutput {
		return
	}
	body := new(strings.Builder)
	body.WriteString("From: " + svc.defaultFromEmail.String() + "\n")
	tos := make([]string, 0, len(msg.To))
	for _, to := range msg.To {
		tos = append(tos, to.String())
	}
	body.WriteString("To: " + strings.Join(tos, ", ") + "\n")
	body.WriteString("Subject: " + svc.subjPrefix + msg.Subject + "\n\n")
	body.WriteString(msg.BodyText + "\n")
	fmt.Println(body.String())
}

// ClearSentMessages resets the mock mailbox between tests.
func ClearSentMessages() {
	mu.Lock()
	SentMessages = SentMessages[:0]
	mu.Unlock()
}
