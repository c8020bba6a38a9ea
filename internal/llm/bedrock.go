package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	agenttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"gymchat/internal/domain"
)

// BedrockRetriever implementa Retriever contra un Bedrock Knowledge Base.
type BedrockRetriever struct {
	client          *bedrockagentruntime.Client
	knowledgeBaseID string
}

func NewBedrockRetriever(client *bedrockagentruntime.Client, knowledgeBaseID string) *BedrockRetriever {
	return &BedrockRetriever{client: client, knowledgeBaseID: knowledgeBaseID}
}

func (r *BedrockRetriever) Retrieve(ctx context.Context, query string, max int) ([]domain.RetrievedChunk, error) {
	if r.client == nil || r.knowledgeBaseID == "" {
		return nil, fmt.Errorf("%w: knowledge base not configured", ErrRetrieval)
	}
	if max <= 0 {
		max = 3
	}

	out, err := r.client.Retrieve(ctx, &bedrockagentruntime.RetrieveInput{
		KnowledgeBaseId: aws.String(r.knowledgeBaseID),
		RetrievalQuery:  &agenttypes.KnowledgeBaseQuery{Text: aws.String(query)},
		RetrievalConfiguration: &agenttypes.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: &agenttypes.KnowledgeBaseVectorSearchConfiguration{
				NumberOfResults: aws.Int32(int32(max)),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	chunks := make([]domain.RetrievedChunk, 0, len(out.RetrievalResults))
	for _, res := range out.RetrievalResults {
		if res.Content == nil || res.Content.Text == nil || *res.Content.Text == "" {
			continue
		}
		chunk := domain.RetrievedChunk{Excerpt: *res.Content.Text}
		if res.Score != nil {
			chunk.Score = *res.Score
		}
		if res.Location != nil && res.Location.S3Location != nil && res.Location.S3Location.Uri != nil {
			chunk.SourceURI = *res.Location.S3Location.Uri
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// BedrockGenerator implementa Generator via InvokeModel. El cuerpo del
// request depende de la familia de modelo configurada.
type BedrockGenerator struct {
	client      *bedrockruntime.Client
	modelID     string
	maxTokens   int
	temperature float64
}

func NewBedrockGenerator(client *bedrockruntime.Client, modelID string, maxTokens int, temperature float64) *BedrockGenerator {
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &BedrockGenerator{
		client:      client,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (g *BedrockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.client == nil || g.modelID == "" {
		return "", fmt.Errorf("%w: bedrock client not configured", ErrGeneration)
	}

	body, err := g.encodeBody(prompt)
	if err != nil {
		return "", fmt.Errorf("%w: encode body: %v", ErrGeneration, err)
	}

	out, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("%w: invoke model: %v", ErrGeneration, err)
	}

	text, err := g.decodeBody(out.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return strings.TrimSpace(text), nil
}

func (g *BedrockGenerator) encodeBody(prompt string) ([]byte, error) {
	switch {
	case strings.Contains(g.modelID, "claude-3"):
		// Claude 3 usa la Messages API.
		return json.Marshal(map[string]any{
			"anthropic_version": "bedrock-2023-05-31",
			"max_tokens":        g.maxTokens,
			"temperature":       g.temperature,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
		})
	case strings.Contains(g.modelID, "amazon"):
		return json.Marshal(map[string]any{
			"inputText": prompt,
			"textGenerationConfig": map[string]any{
				"maxTokenCount": g.maxTokens,
				"temperature":   g.temperature,
			},
		})
	default:
		// Claude legacy y fallback: formato de completions.
		return json.Marshal(map[string]any{
			"prompt":               fmt.Sprintf("Human: %s\nAssistant:", prompt),
			"max_tokens_to_sample": g.maxTokens,
			"temperature":          g.temperature,
		})
	}
}

func (g *BedrockGenerator) decodeBody(body []byte) (string, error) {
	switch {
	case strings.Contains(g.modelID, "claude-3"):
		var resp struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", err
		}
		if len(resp.Content) == 0 {
			return "", fmt.Errorf("empty model response")
		}
		return resp.Content[0].Text, nil
	case strings.Contains(g.modelID, "amazon"):
		var resp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", err
		}
		if len(resp.Results) == 0 {
			return "", fmt.Errorf("empty model response")
		}
		return resp.Results[0].OutputText, nil
	default:
		var resp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", err
		}
		return resp.Completion, nil
	}
}

// BedrockEmbedder implementa Embedder con los modelos Titan de embeddings.
type BedrockEmbedder struct {
	client  *bedrockruntime.Client
	modelID string
}

func NewBedrockEmbedder(client *bedrockruntime.Client, modelID string) *BedrockEmbedder {
	return &BedrockEmbedder{client: client, modelID: modelID}
}

func (e *BedrockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.client == nil || e.modelID == "" {
		return nil, fmt.Errorf("embedder not configured")
	}

	body, err := json.Marshal(map[string]string{"inputText": text})
	if err != nil {
		return nil, err
	}

	out, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(e.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke embedding model: %w", err)
	}

	var resp struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return resp.Embedding, nil
}
