// Package gradersvc talks to the authoritative grading backend: it serves
// the read-only test structure and accepts finished submissions. Grading
// itself happens there, never here.
package gradersvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/attempt"
)

type httpService struct {
	baseURL string
	client  *http.Client
}

var (
	_ attempt.TestFetcher = (*httpService)(nil)
	_ attempt.Submitter   = (*httpService)(nil)
)

func NewHTTPService(conf *core.Config) *httpService {
	return &httpService{
		baseURL: conf.Grader.BaseURL,
		client:  &http.Client{Timeout: conf.Grader.Timeout},
	}
}

func (svc *httpService) FetchTest(ctx context.Context, testID int) (*attempt.Test, error) {
	url := fmt.Sprintf("%s/api/tests/%d", svc.baseURL, testID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building fetch request")
	}

	resp, err := svc.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching test")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetching test: grader returned %d", resp.StatusCode)
	}
	var test attempt.Test
	if err = json.NewDecoder(resp.Body).Decode(&test); err != nil {
		return nil, errors.Wrap(err, "decoding test")
	}
	return &test, nil
}

func (svc *httpService) SubmitTest(ctx context.Context, subReq *attempt.SubmitTestRequest) error {
	body, err := json.Marshal(subReq)
	if err != nil {
		return errors.Wrap(err, "marshalling submission")
	}

	url := fmt.Sprintf("%s/api/tests/%d/submissions", svc.baseURL, subReq.TestID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building submit request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := svc.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "submitting test")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.Errorf("submitting test: grader returned %d", resp.StatusCode)
	}
	return nil
}
