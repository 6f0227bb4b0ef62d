// Copyright 2024 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package tpm2lite

import (
	"github.com/sirupsen/logrus"
)

// logger receives diagnostics for conditions that are tolerated rather than
// returned as errors (see Policy), and dumps of undecodable response bytes.
var logger logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the logger used for diagnostics. Passing nil restores
// the default logrus standard logger.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		logger = logrus.StandardLogger()
		return
	}
	logger = l
}
