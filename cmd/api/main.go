package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"

	"github.com/example/items-service/internal/aws"
	"github.com/example/items-service/internal/handlers"
	"github.com/example/items-service/internal/items"
	"github.com/example/items-service/web"
)

const (
	shutdownTimeout = 30 * time.Second

	tableReadyAttempts = 10
	tableReadyDelay    = time.Second
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterItemRoutes(r, cfg)

	// everything that is not the API falls through to the embedded client
	r.NoRoute(gin.WrapH(http.FileServer(http.FS(web.StaticFS()))))

	return r
}

// waitForTable retries table bootstrap until the database answers. In the
// compose stack the app usually starts before the database container is
// listening, so the first attempts see connection refused.
func waitForTable(ctx context.Context, ensure func(context.Context) error, attempts int, delay time.Duration) error {
	var err error
	for attempt := 1; ; attempt++ {
		if err = ensure(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			return err
		}
		log.Printf("items table not ready (attempt %d/%d): %v", attempt, attempts, err)
		time.Sleep(delay)
	}
}

func main() {
	ctx := context.Background()

	client, err := aws.NewDynamoDBClient(ctx)
	if err != nil {
		log.Fatalf("failed to init dynamodb client: %v", err)
	}

	table := os.Getenv("ITEMS_TABLE")
	if table == "" {
		table = "items"
	}
	store := items.NewStore(client, table)
	if err := waitForTable(ctx, store.EnsureTable, tableReadyAttempts, tableReadyDelay); err != nil {
		log.Fatalf("failed to ensure items table %q: %v", table, err)
	}

	r := setupRouter(handlers.HandlerConfig{Store: store})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	log.Println("=== Items Service Started ===")
	log.Printf("UI available at http://localhost:%s", port)
	log.Printf("Items table: %s", table)
	log.Println("Endpoints:")
	log.Println("  GET    /health         - Health check")
	log.Println("  GET    /api/items      - List items")
	log.Println("  GET    /api/items/:id  - Get one item")
	log.Println("  POST   /api/items      - Create item")
	log.Println("  PUT    /api/items/:id  - Replace item")
	log.Println("  DELETE /api/items/:id  - Delete item")
	log.Println("Press Ctrl+C to shutdown")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return srv.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}
