package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiEmbedder produces embeddings through the Gemini API, rotating
// through the configured API keys when a request fails.
type GeminiEmbedder struct {
	apiKeys    []string
	currentKey int
	client     *genai.Client
	model      *genai.EmbeddingModel
	modelName  string
	mu         sync.Mutex
}

func NewGeminiEmbedder(apiKeys []string, modelName string) (*GeminiEmbedder, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}

	embedder := &GeminiEmbedder{
		apiKeys:    apiKeys,
		currentKey: 0,
		modelName:  modelName,
	}

	if err := embedder.initClient(); err != nil {
		return nil, err
	}
	return embedder, nil
}

func (e *GeminiEmbedder) initClient() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(e.apiKeys[e.currentKey]))
	if err != nil {
		return err
	}
	e.client = client
	e.model = client.EmbeddingModel(e.modelName)
	return nil
}

func (e *GeminiEmbedder) rotateAPIKey() error {
	e.mu.Lock()
	e.currentKey = (e.currentKey + 1) % len(e.apiKeys)
	if err := e.client.Close(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()
	return e.initClient()
}

func (e *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.batchEmbed(ctx, texts)
	if err != nil {
		// Try rotating API key if there's an error
		if err := e.rotateAPIKey(); err != nil {
			return nil, err
		}
		resp, err = e.batchEmbed(ctx, texts)
		if err != nil {
			return nil, err
		}
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, errors.New("embedding response does not match input size")
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}

func (e *GeminiEmbedder) batchEmbed(ctx context.Context, texts []string) (*genai.BatchEmbedContentsResponse, error) {
	batch := e.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}
	return e.model.BatchEmbedContents(ctx, batch)
}
