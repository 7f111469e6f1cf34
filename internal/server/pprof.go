package server

import (
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StartPprofServer runs the debug/pprof handlers on a private port that
// should never be exposed past an SSH tunnel or internal network.
func StartPprofServer(port string, logger *zap.Logger) {
	pprofRouter := gin.New()
	pprof.Register(pprofRouter)

	go func() {
		logger.Info("pprof server starting", zap.String("port", port))
		if err := pprofRouter.Run(port); err != nil {
			logger.Error("pprof server failed", zap.Error(err))
		}
	}()
}
