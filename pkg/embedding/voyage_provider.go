package embedding

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// VoyageProvider generates embeddings via the Voyage multimodal API.
// The same model embeds queries and document chunks so both land in one
// vector space, which is what the similarity search relies on.
type VoyageProvider struct {
	ApiKey    string
	ModelName string
	Client    *http.Client
}

var _ EmbeddingProvider = &VoyageProvider{}

func NewVoyageProvider(apiKey, modelName string) *VoyageProvider {
	if modelName == "" {
		modelName = "voyage-multimodal-3"
	}
	return &VoyageProvider{
		ApiKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type voyageContentPart struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

type voyageInput struct {
	Content []voyageContentPart `json:"content"`
}

type voyageRequest struct {
	Model     string        `json:"model"`
	Inputs    []voyageInput `json:"inputs"`
	InputType string        `json:"input_type,omitempty"`
}

type voyageResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *VoyageProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	return p.generate(voyageInput{
		Content: []voyageContentPart{{Type: "text", Text: text}},
	}, taskType)
}

// GenerateMultimodal embeds text together with an image so chunks that
// carry a figure or table keep their visual content in the vector.
func (p *VoyageProvider) GenerateMultimodal(text string, image []byte, taskType string) (*EmbeddingResponse, error) {
	input := voyageInput{
		Content: []voyageContentPart{{Type: "text", Text: text}},
	}
	if len(image) > 0 {
		input.Content = append(input.Content, voyageContentPart{
			Type:        "image_base64",
			ImageBase64: "data:image/png;base64," + base64.StdEncoding.EncodeToString(image),
		})
	}
	return p.generate(input, taskType)
}

func (p *VoyageProvider) generate(input voyageInput, taskType string) (*EmbeddingResponse, error) {
	voyageReq := voyageRequest{
		Model:     p.ModelName,
		Inputs:    []voyageInput{input},
		InputType: mapTaskType(taskType),
	}

	payload, err := json.Marshal(voyageReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(
		"POST",
		"https://api.voyageai.com/v1/multimodal-embeddings",
		bytes.NewBuffer(payload),
	)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error from voyage response, code %d, body %s", res.StatusCode, string(resByte))
	}

	var voyageRes voyageResponse
	if err := json.Unmarshal(resByte, &voyageRes); err != nil {
		return nil, err
	}
	if len(voyageRes.Data) == 0 {
		return nil, fmt.Errorf("voyage response has no embeddings")
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: voyageRes.Data[0].Embedding},
	}, nil
}

func mapTaskType(taskType string) string {
	switch taskType {
	case "RETRIEVAL_QUERY":
		return "query"
	case "RETRIEVAL_DOCUMENT":
		return "document"
	default:
		return ""
	}
}
