package normalize

import (
	"github.com/tidwall/gjson"

	"github.com/MikeSquared-Agency/convnorm/internal/conversation"
)

// kuraNormalizer accepts documents already in the canonical shape, as written by Kura's
// own conversation dumps. The parsed tree is handed to the validator unchanged.
type kuraNormalizer struct{}

func (kuraNormalizer) Format() conversation.Format { return conversation.FormatKura }

func (kuraNormalizer) Normalize(root gjson.Result) (any, error) {
	return root.Value(), nil
}
