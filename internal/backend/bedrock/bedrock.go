// Package bedrock implements the AWS Bedrock generation backend. Request and response
// payloads are shaped per model family (Anthropic Claude or Amazon Titan).
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/tyemirov/aicommit/internal/aiconfig"
	"github.com/tyemirov/aicommit/internal/backend"
)

const (
	// ProviderNameConstant is the display name reported by the backend.
	ProviderNameConstant = "AWS Bedrock"

	serviceLabelConstant            = "Bedrock"
	defaultModelConstant            = "anthropic.claude-3-sonnet-20240229-v1:0"
	requirementMessageConstant      = "Please provide AWS credentials."
	claudeModelMarkerConstant       = "anthropic.claude"
	titanModelMarkerConstant        = "amazon.titan"
	anthropicVersionConstant        = "bedrock-2023-05-31"
	userRoleConstant                = "user"
	maxTokensConstant               = 1000
	titanTemperatureConstant        = 0.1
	titanTopPConstant               = 0.9
	jsonContentTypeConstant         = "application/json"
	unsupportedModelTemplate        = "Unsupported model: %s"
	clientCreationTemplate          = "unable to load AWS configuration: %w"
	encodeRequestTemplate           = "unable to encode request: %w"
	decodeResponseTemplate          = "unable to decode response: %w"
	missingResponseMessageConstant  = "response body missing"
	missingAPIClientMessageConstant = "client unavailable"
)

var (
	errMissingResponse = errors.New(missingResponseMessageConstant)
	errMissingClient   = errors.New(missingAPIClientMessageConstant)
)

// InvokeModelAPI abstracts the Bedrock InvokeModel call for testing.
type InvokeModelAPI interface {
	InvokeModel(executionContext context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// ClientFactory constructs an InvokeModelAPI for the credentials.
type ClientFactory func(executionContext context.Context, configuration aiconfig.BedrockConfiguration) (InvokeModelAPI, error)

// UnsupportedModelError reports a model id outside the supported families.
type UnsupportedModelError struct {
	ModelID string
}

// Error describes the unsupported model.
func (modelError UnsupportedModelError) Error() string {
	return fmt.Sprintf(unsupportedModelTemplate, modelError.ModelID)
}

// Backend talks to AWS Bedrock.
type Backend struct {
	mutex         sync.RWMutex
	configuration aiconfig.BedrockConfiguration
	clientFactory ClientFactory
	api           InvokeModelAPI
}

// New constructs a backend using the AWS SDK.
func New(configuration aiconfig.BedrockConfiguration) *Backend {
	return NewWithClientFactory(configuration, NewRuntimeClient)
}

// NewWithClientFactory constructs a backend with a substitute client factory.
func NewWithClientFactory(configuration aiconfig.BedrockConfiguration, clientFactory ClientFactory) *Backend {
	if clientFactory == nil {
		clientFactory = NewRuntimeClient
	}
	return &Backend{configuration: configuration, clientFactory: clientFactory}
}

// Factory adapts New to the selector contract.
func Factory(apis aiconfig.APIs) backend.Backend {
	return New(apis.Bedrock)
}

// NewRuntimeClient builds a bedrockruntime client from static credentials.
func NewRuntimeClient(executionContext context.Context, configuration aiconfig.BedrockConfiguration) (InvokeModelAPI, error) {
	awsConfiguration, loadError := awsconfig.LoadDefaultConfig(executionContext,
		awsconfig.WithRegion(strings.TrimSpace(configuration.Region)),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			strings.TrimSpace(configuration.AccessKeyID),
			strings.TrimSpace(configuration.SecretAccessKey),
			"",
		)),
	)
	if loadError != nil {
		return nil, loadError
	}
	return bedrockruntime.NewFromConfig(awsConfiguration), nil
}

// Name reports the provider display name.
func (bedrockBackend *Backend) Name() string {
	return ProviderNameConstant
}

// IsConfigured reports whether region, access key id and secret are present.
func (bedrockBackend *Backend) IsConfigured() bool {
	bedrockBackend.mutex.RLock()
	defer bedrockBackend.mutex.RUnlock()
	return isConfigured(bedrockBackend.configuration)
}

// UpdateConfiguration replaces the credentials and drops the current client.
func (bedrockBackend *Backend) UpdateConfiguration(apis aiconfig.APIs) {
	bedrockBackend.mutex.Lock()
	defer bedrockBackend.mutex.Unlock()
	bedrockBackend.configuration = apis.Bedrock
	bedrockBackend.api = nil
}

// Generate invokes the configured model once and returns the trimmed reply.
func (bedrockBackend *Backend) Generate(executionContext context.Context, prompt string) (string, error) {
	api, modelID, clientError := bedrockBackend.ensureClient(executionContext)
	if clientError != nil {
		return "", clientError
	}

	family, familyError := familyFor(modelID)
	if familyError != nil {
		return "", backend.BackendError{Provider: serviceLabelConstant, Cause: familyError}
	}

	requestBody, encodeError := family.encodeRequest(prompt)
	if encodeError != nil {
		return "", backend.BackendError{Provider: serviceLabelConstant, Cause: fmt.Errorf(encodeRequestTemplate, encodeError)}
	}

	output, invokeError := api.InvokeModel(executionContext, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String(jsonContentTypeConstant),
		Accept:      aws.String(jsonContentTypeConstant),
		Body:        requestBody,
	})
	if invokeError != nil {
		return "", backend.BackendError{Provider: serviceLabelConstant, Cause: invokeError}
	}
	if output == nil {
		return "", backend.BackendError{Provider: serviceLabelConstant, Cause: errMissingResponse}
	}

	text, decodeError := family.decodeResponse(output.Body)
	if decodeError != nil {
		return "", backend.BackendError{Provider: serviceLabelConstant, Cause: fmt.Errorf(decodeResponseTemplate, decodeError)}
	}

	trimmed := strings.TrimSpace(text)
	if len(trimmed) == 0 {
		return "", backend.BackendError{Provider: serviceLabelConstant, Cause: backend.EmptyResponseError{Provider: serviceLabelConstant}}
	}
	return trimmed, nil
}

func (bedrockBackend *Backend) ensureClient(executionContext context.Context) (InvokeModelAPI, string, error) {
	bedrockBackend.mutex.Lock()
	defer bedrockBackend.mutex.Unlock()

	if !isConfigured(bedrockBackend.configuration) {
		return nil, "", backend.NotConfiguredError{Provider: serviceLabelConstant, Requirement: requirementMessageConstant}
	}

	modelID := strings.TrimSpace(bedrockBackend.configuration.Model)
	if len(modelID) == 0 {
		modelID = defaultModelConstant
	}

	if bedrockBackend.api == nil {
		api, creationError := bedrockBackend.clientFactory(executionContext, bedrockBackend.configuration)
		if creationError != nil {
			return nil, "", backend.BackendError{Provider: serviceLabelConstant, Cause: fmt.Errorf(clientCreationTemplate, creationError)}
		}
		if api == nil {
			return nil, "", backend.BackendError{Provider: serviceLabelConstant, Cause: fmt.Errorf(clientCreationTemplate, errMissingClient)}
		}
		bedrockBackend.api = api
	}
	return bedrockBackend.api, modelID, nil
}

func isConfigured(configuration aiconfig.BedrockConfiguration) bool {
	return len(strings.TrimSpace(configuration.AccessKeyID)) > 0 &&
		len(strings.TrimSpace(configuration.SecretAccessKey)) > 0 &&
		len(strings.TrimSpace(configuration.Region)) > 0
}

type modelFamily struct {
	encodeRequest  func(prompt string) ([]byte, error)
	decodeResponse func(body []byte) (string, error)
}

// familyFor matches on substrings so cross-region inference profile ids
// such as us.anthropic.claude-3-5-sonnet resolve to their family.
func familyFor(modelID string) (modelFamily, error) {
	switch {
	case strings.Contains(modelID, claudeModelMarkerConstant):
		return modelFamily{encodeRequest: encodeClaudeRequest, decodeResponse: decodeClaudeResponse}, nil
	case strings.Contains(modelID, titanModelMarkerConstant):
		return modelFamily{encodeRequest: encodeTitanRequest, decodeResponse: decodeTitanResponse}, nil
	default:
		return modelFamily{}, UnsupportedModelError{ModelID: modelID}
	}
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func encodeClaudeRequest(prompt string) ([]byte, error) {
	return json.Marshal(claudeRequest{
		AnthropicVersion: anthropicVersionConstant,
		MaxTokens:        maxTokensConstant,
		Messages:         []claudeMessage{{Role: userRoleConstant, Content: prompt}},
	})
}

func decodeClaudeResponse(body []byte) (string, error) {
	var response claudeResponse
	if decodeError := json.Unmarshal(body, &response); decodeError != nil {
		return "", decodeError
	}
	if len(response.Content) == 0 {
		return "", nil
	}
	return response.Content[0].Text, nil
}

type titanGenerationConfiguration struct {
	MaxTokenCount int     `json:"maxTokenCount"`
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"topP"`
}

type titanRequest struct {
	InputText            string                       `json:"inputText"`
	TextGenerationConfig titanGenerationConfiguration `json:"textGenerationConfig"`
}

type titanResponse struct {
	Results []struct {
		OutputText string `json:"outputText"`
	} `json:"results"`
}

func encodeTitanRequest(prompt string) ([]byte, error) {
	return json.Marshal(titanRequest{
		InputText: prompt,
		TextGenerationConfig: titanGenerationConfiguration{
			MaxTokenCount: maxTokensConstant,
			Temperature:   titanTemperatureConstant,
			TopP:          titanTopPConstant,
		},
	})
}

func decodeTitanResponse(body []byte) (string, error) {
	var response titanResponse
	if decodeError := json.Unmarshal(body, &response); decodeError != nil {
		return "", decodeError
	}
	if len(response.Results) == 0 {
		return "", nil
	}
	return response.Results[0].OutputText, nil
}
