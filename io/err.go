package io

import (
	"errors"

	"github.com/ezrec/lemurs/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelFull = errors.New(f("channel full"))
	ErrPipeClosed  = errors.New(f("pipe closed"))
	ErrPipeCommand = errors.New(f("pipe command missing"))
)
