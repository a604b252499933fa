package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"profanity/pkg/api"
	"profanity/pkg/censor"
	"profanity/pkg/dictionary"
)

type Config struct {
	ServiceName string `toml:"serviceName"`
	// DictionaryPath points to a JSON dictionary; the bundled lists are used when empty.
	DictionaryPath  string `toml:"dictionaryPath"`
	DefaultLanguage string `toml:"defaultLanguage"`

	HTTPAddr   string `toml:"httpAddr"`
	LogLevel   string `toml:"logLevel"`
	KafkaAddr  string `toml:"kafkaAddr"`
	KafkaTopic string `toml:"kafkaTopic"`
	KafkaBatch int    `toml:"kafkaBatch"`
}

func main() {
	var (
		configPath string
		dictPath   string
		language   string
		httpAddr   string
		logLevel   string
		kafkaAddr  string
		kafkaTopic string
		kafkaBatch int
	)

	flag.StringVar(&configPath, "servconf", "cmd/server/config.toml", "Path to TOML config file")
	flag.StringVar(&dictPath, "dict", "", "Path to JSON dictionary file, bundled dictionaries when empty.")
	flag.StringVar(&language, "lang", "", "Default language for requests without one, e.g. 'pt-br'.")
	flag.StringVar(&httpAddr, "http", "", "HTTP server address in the form 'host:port'.")
	flag.StringVar(&logLevel, "log", "", "Log level: debug, info, warn, error.")
	flag.StringVar(&kafkaAddr, "kafka", "", "Kafka server address in the form 'host:port'.")
	flag.StringVar(&kafkaTopic, "topic", "", "Kafka topic.")
	flag.IntVar(&kafkaBatch, "batch", 0, "Kafka batch size.")
	flag.Parse()

	cfg := Config{
		ServiceName:     "censorship",
		DefaultLanguage: string(dictionary.PtBR),
		HTTPAddr:        ":8055",
		LogLevel:        "info",
	}
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		log.Fatalf("[server] failed to load config file %s: %v", configPath, err)
	}

	// Override config with flags if set
	if dictPath != "" {
		cfg.DictionaryPath = dictPath
	}
	if language != "" {
		cfg.DefaultLanguage = language
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if kafkaAddr != "" {
		cfg.KafkaAddr = kafkaAddr
	}
	if kafkaTopic != "" {
		cfg.KafkaTopic = kafkaTopic
	}
	if kafkaBatch != 0 {
		cfg.KafkaBatch = kafkaBatch
	}

	if !strings.Contains(cfg.HTTPAddr, ":") {
		log.Warn("[server] use ':' before port number, e.g. ':8080'")
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

	store := dictionary.Builtin()
	if cfg.DictionaryPath != "" {
		var err error
		store, err = dictionary.LoadFromJSON(cfg.DictionaryPath)
		if err != nil {
			log.Fatalf("[server] failed to load dictionary file %s: %v", cfg.DictionaryPath, err)
		}
	}
	log.Infof("[server] dictionaries loaded: %v", store.Languages())

	defaultLang := store.Match(cfg.DefaultLanguage)
	if !store.Has(defaultLang) {
		log.Warnf("[server] default language %q has no dictionary, the fallback list will be used", cfg.DefaultLanguage)
	}

	var kafkaWriter api.MessageWriter
	if cfg.KafkaAddr != "" && cfg.KafkaTopic != "" {
		kw := &kafka.Writer{
			Addr:      kafka.TCP(cfg.KafkaAddr),
			Topic:     cfg.KafkaTopic,
			BatchSize: cfg.KafkaBatch,
			Async:     true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					log.Errorf("[server] failed to deliver %d messages to Kafka: %v", len(messages), err)
				}
			},
		}
		defer kw.Close()

		err := createTopic(context.Background(), kw.Addr.String(), kw.Topic)
		if err != nil {
			log.Warnf("[server] failed to create Kafka topic: %v", err)
		}
		kafkaWriter = kw
	} else {
		log.Warnf("[server] kafka was not configured, logs will not be sent to Kafka")
	}

	api, err := api.New(cfg.ServiceName, censor.New(store), kafkaWriter)
	if err != nil {
		log.Fatalf("[server] failed to create API: %v", err)
	}
	api.Language = defaultLang

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Infof("[server] starting on port %v", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[server] failed to start: %v", err)
			return
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[server] HTTP server shutdown error: %v", err)
	} else {
		log.Info("[server] HTTP server shut down gracefully")
	}
}

// createTopic makes sure topic exists on broker. An existing topic is not an
// error.
func createTopic(ctx context.Context, broker, topic string) error {
	dialer := &kafka.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", broker)
	if err != nil {
		return fmt.Errorf("dial %s: %w", broker, err)
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if errors.Is(err, kafka.TopicAlreadyExists) {
		return nil
	}
	return err
}
