package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"drawtogether/server"
)

func main() {
	var (
		addr      = flag.String("addr", ":8080", "server listen address, e.g. :8080")
		logFile   = flag.String("log", "app.log", "log file path")
		publicDir = flag.String("public", "./public", "directory for static assets and uploads")
	)
	flag.Parse()

	if err := server.InitLogger(*logFile); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	hub := server.NewHub()
	uploader := &server.Uploader{Dir: *publicDir + "/uploads"}
	if err := os.MkdirAll(uploader.Dir, 0o755); err != nil {
		server.Log.Fatalf("create upload dir: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	r.Static("/static", *publicDir+"/static")
	r.Static("/uploads", uploader.Dir)
	r.GET("/", func(c *gin.Context) {
		c.File(*publicDir + "/static/index.html")
	})
	r.GET("/room/:roomId", func(c *gin.Context) {
		c.File(*publicDir + "/static/index.html")
	})

	r.GET("/ws", hub.HandleWebSocket)
	r.POST("/upload", uploader.HandleUpload)
	r.GET("/metrics", hub.HandleMetrics)
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	go func() {
		server.Log.Infof("listening on %s", *addr)
		if err := r.Run(*addr); err != nil {
			server.Log.Fatalf("server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("shutting down")
}
