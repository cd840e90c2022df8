package global

import (
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

// JSON is the codec for every wire payload and the config file
var JSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Validator validates decoded payloads and configuration
var Validator = validator.New()
