package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	LogLevel     string   `toml:"logLevel"`
	KafkaBrokers []string `toml:"kafkaBrokers"`
	KafkaTopic   string   `toml:"kafkaTopic"`
	KafkaGroupID string   `toml:"kafkaGroupID"`

	ElasticSearchNodes []string `toml:"elasticSearchNodes"`
	// RequestIndex receives HTTP request logs, ModerationIndex moderation verdicts.
	RequestIndex    string `toml:"requestIndex"`
	ModerationIndex string `toml:"moderationIndex"`

	NumWorkers int `toml:"numWorkers"`
}

func main() {
	var (
		configPath string
		logLevel   string
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("[logkeeper] shutting down gracefully...")
		cancel()
	}()

	flag.StringVar(&configPath, "config", "cmd/logkeeper/config.toml", "Path to TOML config file")
	flag.StringVar(&logLevel, "log", "", "Log level: debug, info, warn, error.")
	flag.Parse()

	cfg := Config{
		LogLevel:        "info",
		RequestIndex:    "requests",
		ModerationIndex: "moderation",
		NumWorkers:      1,
	}
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		log.Fatalf("[logkeeper] failed to load config file %s: %v", configPath, err)
	}

	// Override config with flags if set
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if cfg.NumWorkers < 1 {
		cfg.NumWorkers = 1
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: cfg.ElasticSearchNodes})
	if err != nil {
		log.Fatalf("[logkeeper] error creating the client: %s", err)
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	defer r.Close()

	k := &keeper{
		idx:             &esIndexer{es: es},
		requestIndex:    cfg.RequestIndex,
		moderationIndex: cfg.ModerationIndex,
	}

	jobs := make(chan kafka.Message, cfg.NumWorkers*5) // buffer is needed to increase throughput
	var wg sync.WaitGroup
	wg.Add(cfg.NumWorkers)
	for workerID := 0; workerID < cfg.NumWorkers; workerID++ {
		go func(id int) {
			defer wg.Done()
			k.worker(ctx, jobs, id)
		}(workerID)
	}

	log.Info("[logkeeper] accepting logs...")
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			log.Errorf("[logkeeper] failed to read message from Kafka: %v", err)
			continue
		}
		log.Debugf("[logkeeper] received message: %s", string(msg.Value))

		if !dispatch(ctx, jobs, msg) {
			break
		}
	}

	close(jobs)
	wg.Wait()
}
