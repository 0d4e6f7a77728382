package starboard

import (
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		exists    bool
		count     int
		threshold int
		want      Action
	}{
		{"below threshold, no entry", false, 2, 3, ActionNone},
		{"reaches threshold", false, 3, 3, ActionCreate},
		{"above threshold, entry exists", true, 5, 3, ActionUpdate},
		{"drops below threshold", true, 2, 3, ActionDelete},
		{"drops to zero, no entry", false, 0, 3, ActionNone},
		{"stays at threshold, entry exists", true, 3, 3, ActionUpdate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.exists, tt.count, tt.threshold); got != tt.want {
				t.Errorf("Decide(%v, %d, %d) = %v, want %v", tt.exists, tt.count, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestHeadline(t *testing.T) {
	got := headline("⭐", 7, snowflake.ID(42))
	want := "⭐ **7** <#42>"
	if got != want {
		t.Errorf("headline() = %q, want %q", got, want)
	}
}

func TestBuildEmbed(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	imageType := "image/png"
	msg := &discord.Message{
		ID:        snowflake.ID(3),
		ChannelID: snowflake.ID(2),
		Author:    discord.User{ID: snowflake.ID(9), Username: "ella"},
		Content:   "great post",
		CreatedAt: created,
		Attachments: []discord.Attachment{
			{URL: "https://cdn.example/pic.png", ContentType: &imageType},
		},
	}

	embed := BuildEmbed(msg, snowflake.ID(1))

	if embed.Author == nil || embed.Author.Name != "ella" {
		t.Fatalf("embed author = %+v, want ella", embed.Author)
	}
	if embed.Description != "great post" {
		t.Errorf("description = %q", embed.Description)
	}
	if len(embed.Fields) != 1 || !strings.Contains(embed.Fields[0].Value, "discord.com/channels/1/2/3") {
		t.Errorf("jump link field = %+v", embed.Fields)
	}
	if embed.Image == nil || embed.Image.URL != "https://cdn.example/pic.png" {
		t.Errorf("image = %+v, want first image attachment", embed.Image)
	}
	if embed.Timestamp == nil || !embed.Timestamp.Equal(created) {
		t.Errorf("timestamp = %v, want %v", embed.Timestamp, created)
	}
}

func TestBuildEmbed_SkipsNonImageAttachments(t *testing.T) {
	textType := "text/plain"
	msg := &discord.Message{
		Author:      discord.User{Username: "ella"},
		Attachments: []discord.Attachment{{URL: "https://cdn.example/log.txt", ContentType: &textType}},
	}
	if embed := BuildEmbed(msg, snowflake.ID(1)); embed.Image != nil {
		t.Errorf("image = %+v, want none for non-image attachment", embed.Image)
	}
}
