package render

import "errors"

// Stage names the step of a render that failed.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageAcquire   Stage = "acquire"
	StageLaunch    Stage = "launch"
	StagePage      Stage = "page"
	StageNavigate  Stage = "navigate"
	StageInject    Stage = "inject"
	StageSerialize Stage = "serialize"
	StageClose     Stage = "close"
)

// Error is returned by Renderer.Render for every failure.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return string(e.Stage) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StageOf returns the stage of err, or "unknown" when err is not a render error.
func StageOf(err error) Stage {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Stage
	}
	return "unknown"
}
