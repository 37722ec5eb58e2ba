package bot

import (
	"fmt"
	"strings"
	"time"

	"armatracker/internal/config"
	"armatracker/internal/gameserver"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
)

// Use the community "ice" color for every embed
const color int = 0x80FFFF

const (
	siteURL      = "https://theblackorder.wixsite.com/tbo-arma3/"
	thumbnailURL = "https://static.wixstatic.com/media/5474d8_6521e7baef3545a8a8c91b8a55726f7d~mv2.png/" +
		"v1/fill/w_98,h_86,al_c,q_85,usm_0.66_1.00_0.01,enc_auto/TBOA3_logo_1.png"
	bannerURL = "https://static.wixstatic.com/media/5474d8_4055ea615ebb452dbcbf5c7c30955d5b~mv2.jpg/" +
		"v1/fill/w_582,h_107,al_c,q_80,usm_0.66_1.00_0.01,enc_auto/TBO_Arma_Header.jpg"
)

// Discord refuses embeds with more fields than this
const maxEmbedFields = 25

// Field shown instead of the player list when nobody is connected.
// Player values are always H:MM:SS, so this value can never be mistaken for one
const (
	NoPlayersName  = "No Players Online"
	NoPlayersValue = "Server is empty"
)

// Discord refuses blank field names and values, and A2S reports players
// that are still connecting without a name
const (
	UnnamedServer = "(unnamed server)"
	UnnamedPlayer = "(connecting)"
)

func orDefault(text string, fallback string) string {
	if strings.TrimSpace(text) == "" {
		return fallback
	}
	return text
}

// RenderServer builds the server status embed. The map and the password
// only show up when there is something to show
func RenderServer(snapshot gameserver.Snapshot, credentials config.Credentials) *discordgo.MessageEmbed {

	embed := discordgo.MessageEmbed{
		Title:       "TBO Servertracker 9001",
		URL:         siteURL,
		Description: "Current Online Server",
		Color:       color,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: thumbnailURL},
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Current Server", Value: orDefault(snapshot.Name, UnnamedServer), Inline: false})
	if strings.TrimSpace(snapshot.Map) != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Map", Value: snapshot.Map, Inline: false})
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Address", Value: snapshot.Address, Inline: true})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Port", Value: fmt.Sprint(snapshot.Port), Inline: true})
	if password, ok := credentials.Lookup(snapshot.Name); ok {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Password", Value: password, Inline: true})
	}
	return &embed
}

// RenderPlayers builds the player list embed, one field per player in the order the server sent them
func RenderPlayers(players []gameserver.Player) *discordgo.MessageEmbed {

	embed := discordgo.MessageEmbed{
		Title:       "Online Players",
		URL:         siteURL,
		Description: "Current Players Online",
		Color:       color,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: thumbnailURL},
	}

	if len(players) == 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: NoPlayersName, Value: NoPlayersValue, Inline: false})
		return &embed
	}

	shown := players
	if len(players) > maxEmbedFields {
		shown = players[:maxEmbedFields-1]
	}
	for _, player := range shown {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   orDefault(player.Name, UnnamedPlayer),
			Value:  FormatDuration(player.Duration),
			Inline: false,
		})
	}
	if len(shown) < len(players) {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("…and %d more", len(players)-len(shown)),
			Value:  fmt.Sprintf("%d players online", len(players)),
			Inline: false,
		})
	}
	return &embed
}

// FormatDuration rounds to the nearest second and prints H:MM:SS.
// Hours are not wrapped into days
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}

func Banner() Response {
	return ResponseString{bannerURL}
}

func HostEmbed() Response {

	embed := discordgo.MessageEmbed{Title: "GTX Gaming", URL: "https://www.gtxgaming.co.uk/", Color: color}
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: "https://www.gtxgaming.co.uk/wp-content/uploads/2021/03/GTX-Logo.png"}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Player Slots", Value: "20", Inline: true})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Location", Value: "London, UK", Inline: true})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Memory", Value: "8 GB", Inline: true})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "CPU", Value: "4.2 GHz (6 Cores/12 Threads)", Inline: true})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Disk Space", Value: "120 GB", Inline: true})
	return ResponseEmbed{embed}
}

func VoiceEmbed() Response {

	embed := discordgo.MessageEmbed{Title: "TeamSpeak", URL: "https://www.teamspeak.com/en/downloads/", Color: color}
	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{
		URL: "https://discourse-forums-images.s3.dualstack.us-east-2.amazonaws.com/" +
			"original/2X/2/269d8bb30efc4bdf5c99f1f27c2aeadc1ca2fa5d.png",
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Address", Value: "ts3l.gtxgaming.co.uk:10178", Inline: true})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Password", Value: "tbo", Inline: true})
	return ResponseEmbed{embed}
}

func InputNotValid(errorMessage string) []Response {

	return []Response{ResponseString{fmt.Sprintf("Input not valid: \n> %s", errorMessage)}}
}

func HelpMessage(prefix string) []Response {

	embed := discordgo.MessageEmbed{Title: "Commands available", Color: color}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("`%sclear [number]`", prefix),
		Value:  fmt.Sprintf("Delete the last messages of this channel (%d by default, at most %d). The live displays are kept", defaultClearCount, maxClearCount),
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("`%sstatus`", prefix),
		Value:  "Print how the tracker is doing and when the displays were last refreshed",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("`%shelp`", prefix),
		Value:  "Print the usage of the different commands",
		Inline: false,
	})
	return []Response{ResponseEmbed{embed}}
}

func ClearFailed() []Response {
	return []Response{ResponseString{"Could not delete the messages, check my permissions in this channel"}}
}

func StatusMessage(status Status) []Response {

	embed := discordgo.MessageEmbed{Title: "Tracker status", Color: color}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "State", Value: status.State.String(), Inline: true})

	var lastRefresh string
	if status.LastRefresh.IsZero() {
		lastRefresh = "Never"
	} else {
		lastRefresh = humanize.Time(status.LastRefresh)
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Last refresh", Value: lastRefresh, Inline: true})

	failures := "None"
	if status.ConsecutiveFailures > 0 {
		failures = fmt.Sprintf("%s in a row", humanize.Comma(int64(status.ConsecutiveFailures)))
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Failed polls", Value: failures, Inline: true})

	return []Response{ResponseEmbed{embed}}
}
