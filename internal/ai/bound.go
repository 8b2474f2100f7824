package ai

import "context"

// Chat binds a client to one generation profile so pipeline components can
// depend on a single-method collaborator instead of client plus config.
type Chat struct {
	client *OpenAICompatibleClient
	cfg    ChatConfig
}

func NewChat(client *OpenAICompatibleClient, cfg ChatConfig) *Chat {
	return &Chat{client: client, cfg: cfg}
}

func (c *Chat) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	return c.client.Complete(ctx, c.cfg, messages)
}

// Embeddings binds a client to one embedding model. Ingestion and query
// sides must share the same instance so vectors live in one space.
type Embeddings struct {
	client *OpenAICompatibleClient
	cfg    EmbeddingConfig
}

func NewEmbeddings(client *OpenAICompatibleClient, cfg EmbeddingConfig) *Embeddings {
	return &Embeddings{client: client, cfg: cfg}
}

func (e *Embeddings) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, e.cfg, text)
}

func (e *Embeddings) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.client.EmbedBatch(ctx, e.cfg, texts)
}
