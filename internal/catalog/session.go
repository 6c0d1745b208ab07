package catalog

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/skillmatch/internal/profile"
)

const sessionPath = "/session/%d"

type sessionSkill struct {
	Name            string `json:"name"`
	Proficiency     int    `json:"proficiency"`
	CredentialCount *int   `json:"credential_count"`
	ExperienceCount *int   `json:"experience_count"`
}

// LoadProfile reads a candidate session. Skills listed without counts are
// treated as backed by one credential, since the session only stores
// skills the candidate has already validated.
func (c *Client) LoadProfile(ctx context.Context, userID int) (*profile.Profile, error) {
	var body struct {
		Skills []any `json:"skills"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf(sessionPath, userID), nil, &body); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("user %d: %w", userID, profile.ErrNotFound)
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	b := profile.NewBuilder(userID)
	for _, raw := range body.Skills {
		switch v := raw.(type) {
		case string:
			b.Add(v, 1, 0, 0)
		case map[string]any:
			var s sessionSkill
			if err := decodeSkill(v, &s); err != nil {
				return nil, fmt.Errorf("decode session skill: %w", err)
			}
			credentials, experiences := 1, 0
			if s.CredentialCount != nil || s.ExperienceCount != nil {
				credentials, experiences = deref(s.CredentialCount), deref(s.ExperienceCount)
			}
			b.Add(s.Name, credentials, experiences, s.Proficiency)
		}
	}

	return b.Profile(), nil
}

func decodeSkill(raw map[string]any, out *sessionSkill) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
