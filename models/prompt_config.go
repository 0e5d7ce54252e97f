package models

import "time"

// PromptConfigID is the fixed _id of the single prompt configuration document.
const PromptConfigID = "main_config"

// PromptConfig stores the operator-managed prompt templates.
// Collection: ai_prompt_configs (at most one document, _id = "main_config")
type PromptConfig struct {
	ID                        string    `bson:"_id,omitempty" json:"-"`
	SystemPrompt              string    `bson:"system_prompt" json:"system_prompt"`
	UserPromptTemplate        string    `bson:"user_prompt_template" json:"user_prompt_template"`
	SystemInterimPrompt       string    `bson:"system_interim_prompt" json:"system_interim_prompt"`
	UserInterimPromptTemplate string    `bson:"user_interim_prompt_template" json:"user_interim_prompt_template"`
	UpdatedAt                 time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
