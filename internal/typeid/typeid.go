package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixPlayer      = "player"
	PrefixRun         = "run"
	PrefixAsset       = "asset"
	PrefixAchievement = "ach"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewPlayerID() string      { return New(PrefixPlayer) }
func NewRunID() string         { return New(PrefixRun) }
func NewAssetID() string       { return New(PrefixAsset) }
func NewAchievementID() string { return New(PrefixAchievement) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
