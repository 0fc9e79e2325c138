package persistent

import (
	"encoding/json"

	"postauto/internal/entity"
	"postauto/internal/model"
)

// Empty collections marshal to JSON null so the jsonb columns always hold
// valid JSON.
func marshalStrings(values []string) string {
	if len(values) == 0 {
		return "null"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "null"
	}
	return string(data)
}

func unmarshalStrings(raw string) []string {
	if raw == "" || raw == "null" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}

func marshalMap(values map[string]interface{}) string {
	if len(values) == 0 {
		return "null"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "null"
	}
	return string(data)
}

func unmarshalMap(raw string) map[string]interface{} {
	if raw == "" || raw == "null" {
		return nil
	}
	var values map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}

func ToPostModel(post *entity.Post) *model.PostModel {
	return &model.PostModel{
		ID:                post.ID,
		Subject:           post.Subject,
		GeneratedText:     post.GeneratedText,
		HTMLContent:       post.HTMLContent,
		ImagePrompts:      marshalStrings(post.ImagePrompts),
		GeneratedImages:   marshalStrings(post.GeneratedImages),
		Status:            string(post.Status),
		WordpressPostID:   post.WordpressPostID,
		WordpressURL:      post.WordpressURL,
		TelegramMessageID: post.TelegramMessageID,
		TokensUsed:        post.TokensUsed,
		Metadata:          marshalMap(post.Metadata),
		CreatedAt:         post.CreatedAt,
		UpdatedAt:         post.UpdatedAt,
	}
}

func ToPostEntity(m *model.PostModel) *entity.Post {
	return &entity.Post{
		ID:                m.ID,
		Subject:           m.Subject,
		GeneratedText:     m.GeneratedText,
		HTMLContent:       m.HTMLContent,
		ImagePrompts:      unmarshalStrings(m.ImagePrompts),
		GeneratedImages:   unmarshalStrings(m.GeneratedImages),
		Status:            entity.PostStatus(m.Status),
		WordpressPostID:   m.WordpressPostID,
		WordpressURL:      m.WordpressURL,
		TelegramMessageID: m.TelegramMessageID,
		TokensUsed:        m.TokensUsed,
		Metadata:          unmarshalMap(m.Metadata),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func ToUsageModel(usage *entity.Usage) *model.UsageModel {
	return &model.UsageModel{
		ID:        usage.ID,
		Type:      string(usage.Type),
		Count:     usage.Count,
		Metadata:  marshalMap(usage.Metadata),
		CreatedAt: usage.CreatedAt,
	}
}

func ToUsageEntity(m *model.UsageModel) *entity.Usage {
	return &entity.Usage{
		ID:        m.ID,
		Type:      entity.UsageType(m.Type),
		Count:     m.Count,
		Metadata:  unmarshalMap(m.Metadata),
		CreatedAt: m.CreatedAt,
	}
}

func ToLimitsModel(limits *entity.Limits) *model.LimitsModel {
	return &model.LimitsModel{
		ID:              limits.ID,
		RequestsPerHour: limits.RequestsPerHour,
		TokensPerHour:   limits.TokensPerHour,
		ImagesPerDay:    limits.ImagesPerDay,
		PostsPerHour:    limits.PostsPerHour,
		CooldownSeconds: limits.CooldownSeconds,
		CreatedAt:       limits.CreatedAt,
		UpdatedAt:       limits.UpdatedAt,
	}
}

func ToLimitsEntity(m *model.LimitsModel) *entity.Limits {
	return &entity.Limits{
		ID:              m.ID,
		RequestsPerHour: m.RequestsPerHour,
		TokensPerHour:   m.TokensPerHour,
		ImagesPerDay:    m.ImagesPerDay,
		PostsPerHour:    m.PostsPerHour,
		CooldownSeconds: m.CooldownSeconds,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func ToPromptModel(prompt *entity.Prompt) *model.PromptModel {
	return &model.PromptModel{
		ID:             prompt.ID,
		BasePrompt:     prompt.BasePrompt,
		EditorialRules: prompt.EditorialRules,
		Language:       prompt.Language,
		Version:        prompt.Version,
		IsActive:       prompt.IsActive,
		CreatedAt:      prompt.CreatedAt,
		UpdatedAt:      prompt.UpdatedAt,
	}
}

func ToPromptEntity(m *model.PromptModel) *entity.Prompt {
	return &entity.Prompt{
		ID:             m.ID,
		BasePrompt:     m.BasePrompt,
		EditorialRules: m.EditorialRules,
		Language:       m.Language,
		Version:        m.Version,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func ToCredentialModel(cred *entity.Credential) *model.CredentialModel {
	return &model.CredentialModel{
		ID:          cred.ID,
		Key:         cred.Key,
		Value:       cred.Value,
		IsEncrypted: cred.IsEncrypted,
		Description: cred.Description,
		CreatedAt:   cred.CreatedAt,
		UpdatedAt:   cred.UpdatedAt,
	}
}

func ToCredentialEntity(m *model.CredentialModel) *entity.Credential {
	return &entity.Credential{
		ID:          m.ID,
		Key:         m.Key,
		Value:       m.Value,
		IsEncrypted: m.IsEncrypted,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToLogModel(entry *entity.Log) *model.LogModel {
	return &model.LogModel{
		ID:        entry.ID,
		Source:    string(entry.Source),
		Level:     string(entry.Level),
		Message:   entry.Message,
		Metadata:  marshalMap(entry.Metadata),
		CreatedAt: entry.CreatedAt,
	}
}

func ToLogEntity(m *model.LogModel) *entity.Log {
	return &entity.Log{
		ID:        m.ID,
		Source:    entity.LogSource(m.Source),
		Level:     entity.LogLevel(m.Level),
		Message:   m.Message,
		Metadata:  unmarshalMap(m.Metadata),
		CreatedAt: m.CreatedAt,
	}
}
