// Package validation provides configuration validation for offlinestt.
//
// Struct tag validation (go-playground/validator) covers single fields;
// the programmatic Validator collects cross-field rules. Both report an
// INVALID_CONFIG *errors.AppError naming every offending key.
//
// # Struct Tag Validation
//
//	type RecorderConfig struct {
//	    MaxSeconds int `mapstructure:"max_seconds" validate:"gt=0"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Custom(cfg.SilenceDuration < cfg.MaxSeconds, "recorder.silence_duration", "must be shorter than max_seconds")
//	err := v.Validate()
package validation
