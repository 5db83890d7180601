package config

const (
	defaultWorkDir                = "~/.local/share/socialstorm/work"
	defaultLogDir                 = "~/.local/share/socialstorm/logs"
	defaultLibraryDir             = "~/.local/share/socialstorm/library"
	defaultUsageDBPath            = "~/.local/share/socialstorm/usage.db"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLLMBaseURL             = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel               = "openai/gpt-4o-mini"
	defaultLLMReferer             = "https://github.com/DraftbotAI/SocialStormAI"
	defaultLLMTitle               = "SocialStorm Clip Matcher"
	defaultLLMTimeoutSeconds      = 30
	defaultPexelsBaseURL          = "https://api.pexels.com"
	defaultPixabayBaseURL         = "https://pixabay.com/api"
	defaultUnsplashBaseURL        = "https://api.unsplash.com"
	defaultMaxSubjects            = 5
	defaultMaxAttempts            = 2
	defaultSceneBudgetSeconds     = 16
	defaultProviderTimeoutSeconds = 10
	defaultVideoScoreFloor        = 10.0
	defaultImageScoreFloor        = 25.0
	defaultRepeatWindow           = 2
	defaultSynthClipSeconds       = 6
	defaultSynthWidth             = 1080
	defaultSynthHeight            = 1920
	defaultSynthFPS               = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Library: Library{
			Enabled: true,
			Dir:     defaultLibraryDir,
		},
		Pexels: Pexels{
			Enabled: true,
			BaseURL: defaultPexelsBaseURL,
		},
		Pixabay: Pixabay{
			Enabled: true,
			BaseURL: defaultPixabayBaseURL,
		},
		Unsplash: Unsplash{
			Enabled: false,
			BaseURL: defaultUnsplashBaseURL,
		},
		Matcher: Matcher{
			MaxSubjects:            defaultMaxSubjects,
			MaxAttempts:            defaultMaxAttempts,
			SceneBudgetSeconds:     defaultSceneBudgetSeconds,
			ProviderTimeoutSeconds: defaultProviderTimeoutSeconds,
			VideoScoreFloor:        defaultVideoScoreFloor,
			ImageScoreFloor:        defaultImageScoreFloor,
			RepeatWindow:           defaultRepeatWindow,
			AllowRawImage:          false,
			RelaxLandmarkFinal:     true,
		},
		Synth: Synth{
			FFmpegBinary:  "ffmpeg",
			FFprobeBinary: "ffprobe",
			ClipSeconds:   defaultSynthClipSeconds,
			Width:         defaultSynthWidth,
			Height:        defaultSynthHeight,
			FPS:           defaultSynthFPS,
		},
		Usage: Usage{
			Enabled: true,
			DBPath:  defaultUsageDBPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
