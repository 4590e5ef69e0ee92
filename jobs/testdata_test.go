package jobs_test

import (
	"context"
	"errors"
)

var (
	ctx       = context.Background()
	errFailed = errors.New("some error")
)

type simpleJob struct{}

type jobWithArgs struct {
	Name string
}

type jobWithJobType struct {
	Payload int
}

func (j jobWithJobType) JobType() string { return "custom-type" }
