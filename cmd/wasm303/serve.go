package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/thedjinn/wasm303/dsp/core"
	"github.com/thedjinn/wasm303/host"
	"github.com/thedjinn/wasm303/vm"
)

const (
	shutdownTimeout = 5 * time.Second

	// blockPeriod is the real-time duration of one engine block.
	blockPeriod = time.Second * host.BlockFrames / time.Duration(core.SampleRate)
)

var (
	servePort int
	serveMute bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Play the voice and control it over HTTP",
	Long: `Starts an HTTP API under /api/v1 for changing voice parameters while the
engine plays. With --mute the engine is clocked in real time without opening
an audio device.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8303, "Server port")
	serveCmd.Flags().BoolVar(&serveMute, "mute", false, "Run without audio output")
}

func runServe(cmd *cobra.Command, _ []string) error {
	d, err := newDriver(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveMute {
		go clock(ctx, d)
	} else {
		out, err := openOutput(d)
		if err != nil {
			return err
		}
		defer func() { _ = out.Close() }()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", servePort),
		Handler:           newRouter(d),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// clock renders blocks at the engine's real-time rate and discards them.
func clock(ctx context.Context, d *host.Driver) {
	ticker := time.NewTicker(blockPeriod)
	defer ticker.Stop()

	block := make([]float32, host.BlockFrames*host.Channels)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.RenderBlock(block)
		}
	}
}

type api struct {
	driver *host.Driver
}

func newRouter(d *host.Driver) *gin.Engine {
	a := &api{driver: d}

	r := gin.Default()
	r.Use(corsMiddleware())

	r.GET("/health", a.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", a.health)
		v1.GET("/opcodes", listOpcodes)
		v1.GET("/params", a.listParams)
		v1.POST("/params/:name", a.setParam)
		v1.POST("/transport", a.setTransport)
		v1.GET("/step", a.step)
	}

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (a *api) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "wasm303",
		"booted":  a.driver.Booted(),
	})
}

func listOpcodes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"opcodes": vm.Opcodes(),
	})
}

func (a *api) listParams(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"params": a.driver.Params(),
		"names":  host.ParamNames(),
	})
}

type paramRequest struct {
	Value *float64 `json:"value" binding:"required"`
}

func (a *api) setParam(c *gin.Context) {
	name := c.Param("name")

	var req paramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.driver.SendParam(name, *req.Value); err != nil {
		c.JSON(sendStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"name":  name,
		"value": *req.Value,
	})
}

type transportRequest struct {
	Running *bool `json:"running" binding:"required"`
}

func (a *api) setTransport(c *gin.Context) {
	var req transportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	value := 0.0
	if *req.Running {
		value = 1
	}

	if err := a.driver.Send(vm.SetRunning, value); err != nil {
		c.JSON(sendStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"running": *req.Running})
}

func (a *api) step(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"step": a.driver.LastStep()})
}

func sendStatus(err error) int {
	switch {
	case errors.Is(err, host.ErrUnknownParam):
		return http.StatusNotFound
	case errors.Is(err, vm.ErrOperandRange):
		return http.StatusBadRequest
	case errors.Is(err, host.ErrQueueFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
