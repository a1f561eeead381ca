package aiconfig

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"

	"github.com/tyemirov/aicommit/internal/utils"
)

const (
	// ConfigurationFileNameConstant is the name of the workspace configuration document.
	ConfigurationFileNameConstant = "ai-commit.json"
	// EditorDirectoryNameConstant is the editor settings directory searched first.
	EditorDirectoryNameConstant = ".vscode"
	// EnvironmentPrefixConstant prefixes environment overrides such as AICOMMIT_APIS_GEMINI_APIKEY.
	EnvironmentPrefixConstant = "AICOMMIT"

	configurationNameConstant          = "ai-commit"
	configurationTypeConstant          = "json"
	malformedConfigurationLogMessage   = "configuration file could not be parsed; falling back to defaults"
	configurationPathFieldConstant     = "path"
	loadedConfigurationLogMessage      = "configuration loaded"
	defaultsConfigurationLogMessage    = "no configuration file found; using defaults"
	configurationProviderFieldConstant = "provider"
	providerKeyConstant                = "provider"
	geminiAPIKeyKeyConstant            = "apis.gemini.apiKey"
	geminiModelKeyConstant             = "apis.gemini.model"
	bedrockRegionKeyConstant           = "apis.bedrock.region"
	bedrockAccessKeyIDKeyConstant      = "apis.bedrock.accessKeyId"
	bedrockSecretAccessKeyKeyConstant  = "apis.bedrock.secretAccessKey"
	bedrockModelKeyConstant            = "apis.bedrock.model"
	settingsAutoFillKeyConstant        = "settings.autoFill"
	settingsShowPreviewKeyConstant     = "settings.showPreview"
	settingsMaxRetriesKeyConstant      = "settings.maxRetries"
	settingsTimeoutKeyConstant         = "settings.timeout"
	customPromptKeyConstant            = "customPrompt"
	environmentConfigurationLogMessage = "configuration could not be decoded; falling back to defaults"
)

type configurationLoader interface {
	LoadConfiguration(configurationFilePath string, defaultValues map[string]any, target any) (utils.LoadedConfiguration, error)
}

// Holder caches the configuration for one repository root. A document found on disk is
// cached until Reload; missing or unparsable documents are re-read on every Load.
type Holder struct {
	mutex          sync.Mutex
	repositoryRoot string
	logger         *zap.Logger
	loader         configurationLoader
	cached         *Configuration
	path           string
}

// NewHolder constructs a holder searching <root>/.vscode/ai-commit.json, then <root>/ai-commit.json.
func NewHolder(repositoryRoot string, logger *zap.Logger) *Holder {
	if logger == nil {
		logger = zap.NewNop()
	}
	loader := utils.NewConfigurationLoader(configurationNameConstant, configurationTypeConstant, EnvironmentPrefixConstant, nil)
	loader.SetDecodeHooks(trimStringsHook(), normalizeProviderHook())
	return &Holder{
		repositoryRoot: repositoryRoot,
		logger:         logger,
		loader:         loader,
	}
}

// CandidatePaths lists the configuration locations in search order.
func CandidatePaths(repositoryRoot string) []string {
	return []string{
		filepath.Join(repositoryRoot, EditorDirectoryNameConstant, ConfigurationFileNameConstant),
		filepath.Join(repositoryRoot, ConfigurationFileNameConstant),
	}
}

// Load returns the cached configuration, reading it on first use.
func (holder *Holder) Load() Configuration {
	holder.mutex.Lock()
	defer holder.mutex.Unlock()

	if holder.cached != nil {
		return *holder.cached
	}
	return holder.loadLocked()
}

// Reload discards the cached configuration and reads it again.
func (holder *Holder) Reload() Configuration {
	holder.mutex.Lock()
	defer holder.mutex.Unlock()

	holder.cached = nil
	holder.path = ""
	return holder.loadLocked()
}

// Path reports the configuration file backing the cached configuration, or an empty string.
func (holder *Holder) Path() string {
	holder.mutex.Lock()
	defer holder.mutex.Unlock()
	return holder.path
}

// CreateDefaultFile writes the default document and invalidates the cache.
func (holder *Holder) CreateDefaultFile(force bool) (string, error) {
	writtenPath, writeError := WriteDefault(holder.repositoryRoot, force)
	if writeError != nil {
		return "", writeError
	}

	holder.mutex.Lock()
	holder.cached = nil
	holder.path = ""
	holder.mutex.Unlock()
	return writtenPath, nil
}

func (holder *Holder) loadLocked() Configuration {
	for _, candidatePath := range CandidatePaths(holder.repositoryRoot) {
		if !fileExists(candidatePath) {
			continue
		}
		configuration, loadError := holder.decode(candidatePath)
		if loadError != nil {
			holder.logger.Warn(malformedConfigurationLogMessage, zap.String(configurationPathFieldConstant, candidatePath), zap.Error(loadError))
			continue
		}
		holder.cached = &configuration
		holder.path = candidatePath
		holder.logger.Debug(loadedConfigurationLogMessage, zap.String(configurationPathFieldConstant, candidatePath), zap.String(configurationProviderFieldConstant, string(configuration.Provider)))
		return configuration
	}

	configuration, loadError := holder.decode("")
	if loadError != nil {
		holder.logger.Warn(environmentConfigurationLogMessage, zap.Error(loadError))
		return DefaultConfiguration()
	}
	holder.logger.Debug(defaultsConfigurationLogMessage)
	return configuration
}

func (holder *Holder) decode(configurationPath string) (Configuration, error) {
	var configuration Configuration
	if _, loadError := holder.loader.LoadConfiguration(configurationPath, defaultValues(), &configuration); loadError != nil {
		return Configuration{}, loadError
	}
	return configuration, nil
}

// defaultValues lists every key so environment overrides apply even without a file.
func defaultValues() map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		providerKeyConstant:               string(defaults.Provider),
		geminiAPIKeyKeyConstant:           defaults.APIs.Gemini.APIKey,
		geminiModelKeyConstant:            defaults.APIs.Gemini.Model,
		bedrockRegionKeyConstant:          defaults.APIs.Bedrock.Region,
		bedrockAccessKeyIDKeyConstant:     defaults.APIs.Bedrock.AccessKeyID,
		bedrockSecretAccessKeyKeyConstant: defaults.APIs.Bedrock.SecretAccessKey,
		bedrockModelKeyConstant:           defaults.APIs.Bedrock.Model,
		settingsAutoFillKeyConstant:       defaults.Settings.AutoFill,
		settingsShowPreviewKeyConstant:    defaults.Settings.ShowPreview,
		settingsMaxRetriesKeyConstant:     defaults.Settings.MaxRetries,
		settingsTimeoutKeyConstant:        defaults.Settings.TimeoutMillis,
		customPromptKeyConstant:           string(defaults.CustomPrompt),
	}
}

func trimStringsHook() mapstructure.DecodeHookFuncType {
	verbatimType := reflect.TypeOf(PromptSuffix(""))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.String || to == verbatimType {
			return data, nil
		}
		return strings.TrimSpace(reflect.ValueOf(data).String()), nil
	}
}

func normalizeProviderHook() mapstructure.DecodeHookFuncType {
	providerType := reflect.TypeOf(Provider(""))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != providerType {
			return data, nil
		}
		return strings.ToLower(strings.TrimSpace(reflect.ValueOf(data).String())), nil
	}
}

func fileExists(path string) bool {
	info, statError := os.Stat(path)
	if statError != nil {
		return false
	}
	return !info.IsDir()
}
