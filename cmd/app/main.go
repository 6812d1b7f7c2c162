package main

import (
	"os"

	"github.com/Domenick1991/carrental/internal/bootstrap"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}
}

func main() {
	fx.New(
		bootstrap.AppModule,
		fx.NopLogger,
	).Run()
}
