package main

// go run ./cmd/dbmis

import (
	"context"
	"os"
	"slices"
	"time"

	"dbmis/internal/app/config"
	"dbmis/internal/app/dsn"
	"dbmis/internal/app/handler"
	"dbmis/internal/app/handler/middleware"
	"dbmis/internal/app/pkg"
	"dbmis/internal/app/repository"
	"dbmis/internal/app/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	_ "dbmis/docs" // Swagger docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("error loading config: %v", err)
	}
	if err := utils.SetupLogger(conf.LogLevel, conf.LogFile); err != nil {
		logrus.Fatalf("error setting up logger: %v", err)
	}

	// уровень логирования можно менять без перезапуска
	conf.Watch(func(c *config.Config) {
		lvl, err := logrus.ParseLevel(c.LogLevel)
		if err != nil {
			logrus.Warnf("ignoring log level %q: %v", c.LogLevel, err)
			return
		}
		logrus.SetLevel(lvl)
		logrus.Infof("log level set to %s", lvl)
	})

	gin.SetMode(conf.Mode)

	rep, err := repository.NewFromConfig(context.Background(), conf, dsn.FromEnv())
	if err != nil {
		logrus.Fatalf("error initializing repository: %v", err)
	}
	defer func() {
		if err := rep.Close(); err != nil {
			logrus.Errorf("error closing repository: %v", err)
		}
	}()

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), cors.New(corsConfig(conf.CorsOrigins)))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	hand := handler.NewHandler(rep, conf.StaticDir)

	application := pkg.NewApp(conf, router, hand)
	if err := application.RunApp(); err != nil {
		logrus.Errorf("server error: %v", err)
		os.Exit(1)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	// "*" вместе с credentials браузер не принимает, поэтому отражаем Origin запроса
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
