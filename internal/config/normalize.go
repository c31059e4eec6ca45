package config

import "strings"

func (c *Config) normalize() error {
	for _, field := range []*string{
		&c.Paths.TranscriptsDir,
		&c.Paths.AnalysisTypesDir,
		&c.Paths.LogDir,
		&c.Paths.CatalogPath,
	} {
		expanded, err := expandPath(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}

	for i := range c.Analysis.JudgePairs {
		c.Analysis.JudgePairs[i].Draft = strings.TrimSpace(c.Analysis.JudgePairs[i].Draft)
		c.Analysis.JudgePairs[i].Judge = strings.TrimSpace(c.Analysis.JudgePairs[i].Judge)
	}

	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
