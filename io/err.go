package io

import (
	"errors"

	"github.com/ezrec/intcode/translate"
)

var f = translate.From

var (
	// Port errors
	ErrClosed        = errors.New(f("port closed"))
	ErrLateSubscribe = errors.New(f("subscribe after producer started"))
)
