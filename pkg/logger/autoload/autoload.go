// Package autoload initializes the global zerolog logger from the
// environment as a side effect of being imported.
package autoload

import (
	configx "github.com/sam-admissions/tourbot/pkg/config"
	logx "github.com/sam-admissions/tourbot/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
