package bot

import (
	"github.com/bwmarrin/discordgo"
)

type ResponseString struct {
	string
}
type ResponseEmbed struct {
	discordgo.MessageEmbed
}

// A Response is anything the bot posts to a channel.
// It knows how to become a new message and how to replace the content of an existing one
type Response interface {
	MessageSend() *discordgo.MessageSend
	MessageEdit(handle Handle) *discordgo.MessageEdit
}

func NewResponseString(content string) ResponseString {
	return ResponseString{content}
}

func NewResponseEmbed(embed *discordgo.MessageEmbed) ResponseEmbed {
	return ResponseEmbed{*embed}
}

func (response ResponseString) String() string {
	return response.string
}

func (response ResponseString) MessageSend() *discordgo.MessageSend {
	return &discordgo.MessageSend{Content: response.string}
}

func (response ResponseString) MessageEdit(handle Handle) *discordgo.MessageEdit {
	return discordgo.NewMessageEdit(handle.ChannelID, handle.MessageID).SetContent(response.string)
}

func (response ResponseEmbed) MessageSend() *discordgo.MessageSend {
	embed := response.MessageEmbed
	return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{&embed}}
}

func (response ResponseEmbed) MessageEdit(handle Handle) *discordgo.MessageEdit {
	embed := response.MessageEmbed
	return discordgo.NewMessageEdit(handle.ChannelID, handle.MessageID).SetEmbed(&embed)
}
