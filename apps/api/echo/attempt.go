package echoapi

import (
	"fmt"
	"net/http"
	"net/mail"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/attempt"
)

type attemptApi struct {
	svc        attempt.Service
	fetcher    attempt.TestFetcher
	submitter  attempt.Submitter
	mailSvc    core.EmailService
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator
}

func registerAttemptAPI(g *echo.Group, ident echo.MiddlewareFunc, opts *Options) {
	api := attemptApi{
		svc:        opts.AttemptSvc,
		fetcher:    opts.Fetcher,
		submitter:  opts.Submitter,
		mailSvc:    opts.MailSvc,
		logger:     opts.Logger,
		validate:   opts.Validate,
		translator: opts.Translator,
	}

	tg := g.Group("/tests/:testID/attempt", ident)
	tg.POST("", api.create)
	tg.GET("", api.retrieve)
	tg.PUT("/answers", api.upsertAnswer)
	tg.GET("/progress", api.progress)
	tg.POST("/submit", api.submit)
	tg.DELETE("", api.clear)

	g.DELETE("/attempts", api.clearAll, ident)
}

// Handlers

func (api *attemptApi) create(ctx echo.Context) error {
	owner, testID, err := api.ownerAndTest(ctx)
	if err != nil {
		return err
	}

	// courseId comes from the authoritative test structure
	test, err := api.fetcher.FetchTest(ctx.Request().Context(), testID)
	if err != nil {
		return errors.Wrap(err, "fetching test")
	}

	att, err := api.svc.Create(owner, testID, test.CourseID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, att)
}

func (api *attemptApi) retrieve(ctx echo.Context) error {
	owner, testID, err := api.ownerAndTest(ctx)
	if err != nil {
		return err
	}

	att, err := api.svc.Get(owner, testID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attemptApi) upsertAnswer(ctx echo.Context) error {
	owner, testID, err := api.ownerAndTest(ctx)
	if err != nil {
		return err
	}

	var data attempt.AnswerInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnswerInput")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	att, err := api.svc.UpsertAnswer(owner, testID, data.TestQuestionID, data.Values)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attemptApi) progress(ctx echo.Context) error {
	owner, testID, err := api.ownerAndTest(ctx)
	if err != nil {
		return err
	}

	test, err := api.fetcher.FetchTest(ctx.Request().Context(), testID)
	if err != nil {
		return errors.Wrap(err, "fetching test")
	}

	// no attempt yet: progress is all zeros, not an error
	att, err := api.svc.Get(owner, testID)
	if err != nil && errors.Cause(err) != attempt.ErrNoAttempt {
		return err
	}
	return ctx.JSON(http.StatusOK, attempt.Progress(test, att))
}

func (api *attemptApi) submit(ctx echo.Context) error {
	owner, testID, err := api.ownerAndTest(ctx)
	if err != nil {
		return err
	}

	req, err := api.svc.BuildSubmission(owner, testID)
	if err != nil {
		return err
	}
	if err = api.submitter.SubmitTest(ctx.Request().Context(), req); err != nil {
		// attempt stays put; the client may retry
		return &attempt.SubmitError{Err: err}
	}

	// acknowledged: clear the local attempt
	if err = api.svc.Clear(owner, testID); err != nil {
		api.logger.Warn("clearing submitted attempt failed", err, owner)
	}
	api.sendReceipt(ctx, req)

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"detail":         "submitted",
		"takingDuration": req.TakingDuration,
		"finishedAt":     req.FinishedAt,
	})
}

func (api *attemptApi) clear(ctx echo.Context) error {
	owner, testID, err := api.ownerAndTest(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Clear(owner, testID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attemptApi) clearAll(ctx echo.Context) error {
	owner, err := getContextOwner(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.ClearAllForOwner(owner); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// helpers

func (api *attemptApi) ownerAndTest(ctx echo.Context) (string, int, error) {
	owner, err := getContextOwner(ctx)
	if err != nil {
		return "", 0, err
	}
	testID, err := strconv.Atoi(ctx.Param("testID"))
	if err != nil {
		return "", 0, errHttpNotFound
	}
	return owner, testID, nil
}

func (api *attemptApi) sendReceipt(ctx echo.Context, req *attempt.SubmitTestRequest) {
	email := getContextEmail(ctx)
	if api.mailSvc == nil || email == "" {
		return
	}
	api.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: email}},
		Subject: "Your test submission was received",
		BodyText: fmt.Sprintf(
			"We received your submission (%d answered questions) at %s. Results will be available once grading completes.",
			len(req.UserAnswers), req.FinishedAt,
		),
	})
}
