package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"profanity/pkg/models"
)

type indexer interface {
	index(ctx context.Context, index, docID string, body []byte) error
}

type esIndexer struct {
	es *elasticsearch.Client
}

func (i *esIndexer) index(ctx context.Context, index, docID string, body []byte) error {
	res, err := i.es.Index(
		index,
		bytes.NewReader(body),
		i.es.Index.WithDocumentID(docID),
		i.es.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch: %s", res.String())
	}
	return nil
}

// keeper routes Kafka messages to Elasticsearch indexes by their kind header.
type keeper struct {
	idx             indexer
	requestIndex    string
	moderationIndex string
}

// document is the part shared by LogEntry and ModerationEvent.
type document struct {
	RequestID string `json:"request_id"`
	Service   string `json:"service"`
}

// route picks the index and document ID for msg. Messages without a kind
// header are request logs.
func (k *keeper) route(msg kafka.Message) (string, string, error) {
	kind := models.KindRequest
	for _, h := range msg.Headers {
		if h.Key == models.KindHeader {
			kind = string(h.Value)
		}
	}

	var doc document
	if err := json.Unmarshal(msg.Value, &doc); err != nil {
		return "", "", fmt.Errorf("failed to unmarshal %s message: %w", kind, err)
	}

	switch kind {
	case models.KindRequest:
		return k.requestIndex, doc.Service + doc.RequestID, nil
	case models.KindModeration:
		return k.moderationIndex, doc.Service + doc.RequestID, nil
	}
	return "", "", fmt.Errorf("unknown message kind %q", kind)
}

func (k *keeper) worker(ctx context.Context, jobs <-chan kafka.Message, workerID int) {
	for {
		select {
		case <-ctx.Done():
			log.Infof("[logkeeper][workerID:%d] context cancelled, exiting worker", workerID)
			return

		case msg, ok := <-jobs:
			if !ok {
				log.Infof("[logkeeper][workerID:%d] jobs channel closed, exiting worker", workerID)
				return
			}
			log.Debugf("[logkeeper][workerID:%d] received message: %s", workerID, string(msg.Value))

			index, docID, err := k.route(msg)
			if err != nil {
				log.Errorf("[logkeeper][workerID:%d] %v", workerID, err)
				continue
			}

			if err := k.idx.index(ctx, index, docID, msg.Value); err != nil {
				log.Errorf("[logkeeper][workerID:%d] failed to index document: %v", workerID, err)
			} else {
				log.Infof("[logkeeper][workerID:%d][%s] %s entry indexed", workerID, shorten(docID), index)
			}
		}
	}
}

// dispatch hands msg to the workers. It returns false if ctx was cancelled
// before a worker could take it.
func dispatch(ctx context.Context, jobs chan<- kafka.Message, msg kafka.Message) bool {
	select {
	case jobs <- msg:
		return true
	case <-ctx.Done():
		log.Warnf("[logkeeper] context cancelled, dropping message at offset %d", msg.Offset)
		return false
	}
}

func shorten(s string) string {
	if len(s) > 6 {
		return s[:6] + "..."
	}
	return s
}
