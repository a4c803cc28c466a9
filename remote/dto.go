package remote

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/viant/launchsync/launch"
)

// launchPage mirrors the paginated envelope of Launch Library 2.
type launchPage struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []launchDTO `json:"results"`
}

func (p launchPage) hasMore() bool { return p.Next != nil && *p.Next != "" }

type named struct {
	Name string `json:"name"`
}

type launchDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Net    string `json:"net"`
	Status *struct {
		Name        string `json:"name"`
		Abbrev      string `json:"abbrev"`
		Description string `json:"description"`
	} `json:"status"`
	LaunchServiceProvider *named `json:"launch_service_provider"`
	Rocket                *struct {
		Configuration *struct {
			Name     string `json:"name"`
			FullName string `json:"full_name"`
		} `json:"configuration"`
	} `json:"rocket"`
	Mission *struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"mission"`
	Pad *struct {
		Name     string `json:"name"`
		Location *named `json:"location"`
	} `json:"pad"`
	// Image is a bare URL in API 2.2 and an object in 2.3.
	Image       jsontext.Value `json:"image"`
	WebcastLive bool           `json:"webcast_live"`
}

// toLaunch maps a DTO into the cached model. Missing ids and unparsable
// timestamps are reported as ErrMapping.
func (d launchDTO) toLaunch(p launch.Partition) (launch.Launch, error) {
	if strings.TrimSpace(d.ID) == "" {
		return launch.Launch{}, fmt.Errorf("%w: missing id (name %q)", ErrMapping, d.Name)
	}
	net, err := time.Parse(time.RFC3339, d.Net)
	if err != nil {
		return launch.Launch{}, fmt.Errorf("%w: launch %s: net %q: %v", ErrMapping, d.ID, d.Net, err)
	}
	l := launch.Launch{ID: d.ID, Partition: p, Name: d.Name, Net: net.UTC()}
	if d.Status != nil {
		l.Details.Status = d.Status.Abbrev
		if l.Details.Status == "" {
			l.Details.Status = d.Status.Name
		}
		l.Details.StatusDescription = d.Status.Description
	}
	if d.LaunchServiceProvider != nil {
		l.Details.Provider = d.LaunchServiceProvider.Name
	}
	if d.Rocket != nil && d.Rocket.Configuration != nil {
		l.Details.Rocket = d.Rocket.Configuration.FullName
		if l.Details.Rocket == "" {
			l.Details.Rocket = d.Rocket.Configuration.Name
		}
	}
	if d.Mission != nil {
		l.Details.Mission = d.Mission.Name
		l.Details.MissionDescription = d.Mission.Description
	}
	if d.Pad != nil {
		l.Details.Pad = d.Pad.Name
		if d.Pad.Location != nil {
			l.Details.Location = d.Pad.Location.Name
		}
	}
	l.Details.ImageURL = imageURL(d.Image)
	l.Details.WebcastLive = d.WebcastLive
	return l, nil
}

func imageURL(v jsontext.Value) string {
	switch v.Kind() {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	case '{':
		var obj struct {
			ImageURL string `json:"image_url"`
		}
		if err := json.Unmarshal(v, &obj); err == nil {
			return obj.ImageURL
		}
	}
	return ""
}
