package shaderedit

import (
	"os"

	"gopkg.in/yaml.v3"
)

type SessionSettings struct {
	// the preview source the host reports when none is attached
	PreviewSource string                    `yaml:"preview_source"`
	Translator    *TranslatorSettings       `yaml:"translator"`
	Compiler      *NagaCompilerSettings     `yaml:"compiler"`
	Transport     *ProjectTransportSettings `yaml:"transport"`
}

func DefaultSessionSettings() *SessionSettings {
	return &SessionSettings{
		PreviewSource: PreviewSourceAsset,
		Translator:    DefaultTranslatorSettings(),
		Compiler:      DefaultNagaCompilerSettings(),
		Transport:     DefaultProjectTransportSettings(),
	}
}

// reads yaml settings over the defaults. Missing keys keep their default.
func LoadSessionSettings(path string) (*SessionSettings, error) {
	settingsBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSessionSettings(settingsBytes)
}

func ParseSessionSettings(settingsBytes []byte) (*SessionSettings, error) {
	settings := DefaultSessionSettings()
	if err := yaml.Unmarshal(settingsBytes, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (self *SessionSettings) NewStageChecker(chunks ChunkRegistry) *StageChecker {
	return NewStageChecker(
		NewNagaCompiler(self.Compiler),
		NewTranslator(chunks, self.Translator),
	)
}
