// cmd/tools/event-publisher/main.go
//
// Operator tool for smoke-testing the pipeline: appends one payload to a
// topic stream. The payload is passed through verbatim, so JSON, the legacy
// comma-separated layout, and malformed garbage can all be exercised.
//
//	event-publisher -topic user_signed_up -payload '{"user_id":"7","email":"x@y.com"}'
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		addr     = flag.String("redis", "localhost:6379", "redis address")
		password = flag.String("password", "", "redis password")
		db       = flag.Int("db", 0, "redis database")
		topic    = flag.String("topic", "", "topic stream to append to (required)")
		payload  = flag.String("payload", "", "event payload, passed through verbatim (required)")
	)
	flag.Parse()

	if *topic == "" || *payload == "" {
		flag.Usage()
		os.Exit(2)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     *addr,
		Password: *password,
		DB:       *db,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: *topic,
		Values: map[string]interface{}{"payload": *payload},
	}).Result()
	if err != nil {
		fmt.Fprintf(os.Stderr, "publish failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("published %s to %s\n", id, *topic)
}
