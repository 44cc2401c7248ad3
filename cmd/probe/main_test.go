package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	probeerrors "github.com/nikita2206/probe/internal/errors"
)

func TestExitCode_UserErrorsMapToOne(t *testing.T) {
	assert.Equal(t, 1, exitCode(probeerrors.NewQueryInvalid(0, assertErr)))
	assert.Equal(t, 1, exitCode(probeerrors.NewModelMissing("x", assertErr)))
	assert.Equal(t, 1, exitCode(probeerrors.NewModelLoadError("x", assertErr)))
}

func TestExitCode_OtherErrorsMapToTwo(t *testing.T) {
	assert.Equal(t, 2, exitCode(probeerrors.NewIoError("x", assertErr)))
	assert.Equal(t, 2, exitCode(probeerrors.NewWriterBusy(assertErr)))
}

var assertErr = errString("boom")

type errString string

func (e errString) Error() string { return string(e) }
