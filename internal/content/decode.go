package content

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
)

// strictJSON rejects fields the scene schema does not define.
var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

// Raw records use pointers so a missing required field is distinguishable
// from its zero value.
type sceneRecord struct {
	ID          *int            `json:"id"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Options     *[]optionRecord `json:"options"`
	Progress    *Progress       `json:"progress"`
}

type optionRecord struct {
	ID          *optionID              `json:"id"`
	Text        *string                `json:"text"`
	Profiles    *[]profileWeightRecord `json:"profiles"`
	NextSceneID *int                   `json:"next_scene_id"`
	Feedback    *string                `json:"feedback"`
}

type profileWeightRecord struct {
	Name   *string `json:"name"`
	Weight *int    `json:"weight"`
}

// optionID accepts both "a" and 1 as option identifiers.
type optionID string

func (o *optionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("option id: %w", err)
		}
		*o = optionID(s)
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("option id must be a string or an integer, got %s", data)
	}
	*o = optionID(strconv.Itoa(n))
	return nil
}

func decodeScenes(data []byte) ([]sceneRecord, error) {
	var records []sceneRecord
	if err := strictJSON.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// toScenes converts raw records into scenes, reporting every missing field.
func toScenes(records []sceneRecord) ([]Scene, []string) {
	var problems []string
	scenes := make([]Scene, 0, len(records))

	for i, rec := range records {
		where := fmt.Sprintf("scene #%d", i+1)
		if rec.ID != nil {
			where = fmt.Sprintf("scene %d", *rec.ID)
		}
		missing := func(field string) {
			problems = append(problems, fmt.Sprintf("%s: missing required field %q", where, field))
		}

		if rec.ID == nil {
			missing("id")
		}
		if rec.Title == nil {
			missing("title")
		}
		if rec.Description == nil {
			missing("description")
		}
		if rec.Options == nil {
			missing("options")
		}

		scene := Scene{Progress: rec.Progress}
		if rec.ID != nil {
			scene.ID = *rec.ID
		}
		if rec.Title != nil {
			scene.Title = *rec.Title
		}
		if rec.Description != nil {
			scene.Description = *rec.Description
		}
		if rec.Options != nil {
			for j, orec := range *rec.Options {
				opt, optProblems := toOption(orec, where, j)
				problems = append(problems, optProblems...)
				scene.Options = append(scene.Options, opt)
			}
		}
		scenes = append(scenes, scene)
	}
	return scenes, problems
}

func toOption(rec optionRecord, scene string, idx int) (Option, []string) {
	var problems []string
	where := fmt.Sprintf("%s option #%d", scene, idx+1)
	if rec.ID != nil {
		where = fmt.Sprintf("%s option %q", scene, string(*rec.ID))
	}
	missing := func(field string) {
		problems = append(problems, fmt.Sprintf("%s: missing required field %q", where, field))
	}

	var opt Option
	if rec.ID == nil {
		missing("id")
	} else {
		opt.ID = string(*rec.ID)
	}
	if rec.Text == nil {
		missing("text")
	} else {
		opt.Text = *rec.Text
	}
	if rec.NextSceneID == nil {
		missing("next_scene_id")
	} else {
		opt.NextSceneID = *rec.NextSceneID
	}
	if rec.Feedback == nil {
		missing("feedback")
	} else {
		opt.Feedback = *rec.Feedback
	}
	if rec.Profiles == nil {
		missing("profiles")
	} else {
		for _, prec := range *rec.Profiles {
			if prec.Name == nil || prec.Weight == nil {
				problems = append(problems, fmt.Sprintf("%s: profile entry needs both name and weight", where))
				continue
			}
			opt.Profiles = append(opt.Profiles, ProfileWeight{Name: *prec.Name, Weight: *prec.Weight})
		}
	}
	return opt, problems
}
