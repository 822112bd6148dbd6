package httpreq

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/seqops/stagehand/config"
	"github.com/seqops/stagehand/report"
	"github.com/seqops/stagehand/runtime"
	"github.com/seqops/stagehand/step"
	"github.com/seqops/stagehand/util"
)

func init() {
	if err := step.Register("http", New); err != nil {
		panic(err)
	}
}

// HTTPStep sends an HTTP request to a registry or CI system. Any 2xx
// response is success; other statuses are reported like a non-zero
// exit code.
type HTTPStep struct {
	step.BaseStep
	Method  string
	URL     string
	Body    string
	Headers map[string]string

	client *resty.Client

	renderedURL  string
	renderedBody string
}

// New creates an HTTPStep from its plan spec.
func New(spec config.StepSpec) (step.Step, error) {
	if spec.HTTP == nil {
		return nil, errors.Errorf("step '%s': http action spec is missing", spec.ID)
	}
	return &HTTPStep{
		BaseStep: step.BaseStep{
			StepID:          spec.ID,
			StepDescription: spec.Description,
			BestEffort:      spec.ContinueOnError,
			TimeoutValue:    spec.Timeout.Std(),
		},
		Method:  spec.HTTP.Method,
		URL:     spec.HTTP.URL,
		Body:    spec.HTTP.Body,
		Headers: spec.HTTP.Headers,
		client:  resty.New().SetRetryCount(0),
	}, nil
}

// Init renders plan parameters into the URL and body.
func (s *HTTPStep) Init(rt runtime.Runtime, log *logrus.Entry) error {
	if err := s.BaseStep.Init(rt, log); err != nil {
		return err
	}
	params := util.ParamData(rt.Parameters())

	renderedURL, err := util.RenderString(s.URL, params)
	if err != nil {
		return errors.Wrapf(err, "step '%s': failed to render url", s.ID())
	}
	renderedBody, err := util.RenderString(s.Body, params)
	if err != nil {
		return errors.Wrapf(err, "step '%s': failed to render body", s.ID())
	}

	s.renderedURL = renderedURL
	s.renderedBody = renderedBody
	log.Debugf("http step [%s] prepared: %s %s", s.ID(), s.Method, renderedURL)
	return nil
}

// Execute sends the request. Transport failures become ExecutionErrors;
// non-2xx statuses carry the HTTP status as the exit signal.
func (s *HTTPStep) Execute(ctx context.Context, rt runtime.Runtime, log *logrus.Entry) (string, error) {
	req := s.client.R().SetContext(ctx)
	for k, v := range s.Headers {
		req.SetHeader(k, v)
	}
	if s.renderedBody != "" {
		req.SetBody(s.renderedBody)
	}

	log.Infof("sending %s %s", s.Method, s.renderedURL)
	resp, err := req.Execute(s.Method, s.renderedURL)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &report.StartError{Cause: err}
	}

	body := resp.String()
	if !resp.IsSuccess() {
		detail := strings.TrimSpace(body)
		if len(detail) > 200 {
			detail = detail[:200] + "..."
		}
		return body, &report.ExitCodeError{
			Code:   resp.StatusCode(),
			Detail: fmt.Sprintf("%s: %s", resp.Status(), detail),
		}
	}

	rt.Values().Set("output."+s.ID(), strings.TrimSpace(body))
	return body, nil
}

var _ step.Step = (*HTTPStep)(nil)
