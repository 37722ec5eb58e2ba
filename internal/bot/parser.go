package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	defaultClearCount = 10
	maxClearCount     = 100
)

const (
	COMMAND_CLEAR  = iota
	COMMAND_STATUS = iota
	COMMAND_HELP   = iota
)

const (
	PARSEID_OK                     = iota
	PARSEID_NO_BOT_PREFIX          = iota
	PARSEID_NO_COMMAND             = iota
	PARSEID_COMMAND_NOT_RECOGNISED = iota
	PARSEID_NOT_A_NUMBER           = iota
	PARSEID_OUT_OF_RANGE           = iota
	PARSEID_TOO_MANY_ARGUMENTS     = iota
)

var errorMessages map[int]string = map[int]string{
	PARSEID_NO_COMMAND:             "No command provided",
	PARSEID_COMMAND_NOT_RECOGNISED: "Command `%s` not recognised",
	PARSEID_NOT_A_NUMBER:           "Input `%s` is not a number",
	PARSEID_OUT_OF_RANGE:           "Number of messages has to be between 1 and %d",
	PARSEID_TOO_MANY_ARGUMENTS:     "Command `%s` takes at most one argument",
}

type ParseResult struct {
	command      int
	parseid      int
	errorMessage string
	arguments    interface{}
}

func Parse(prefix string, message string) ParseResult {

	// The message has to start with the bot prefix
	if !strings.HasPrefix(message, prefix) {
		log.Debug().Msg("Reject message not intended for the bot")
		return ParseResult{parseid: PARSEID_NO_BOT_PREFIX}
	}

	// Get the command if valid
	words := strings.Fields(message[len(prefix):])
	if len(words) == 0 {
		parseid := PARSEID_NO_COMMAND
		return ParseResult{parseid: parseid, errorMessage: errorMessages[parseid]}
	}
	commandString := strings.ToLower(words[0])
	words = words[1:]

	// Match the command
	switch commandString {
	case "clear":
		// >clear [number]
		return parseClear(commandString, words)
	case "status":
		// >status
		return ParseResult{command: COMMAND_STATUS, parseid: PARSEID_OK}
	case "help":
		// >help
		return ParseResult{command: COMMAND_HELP, parseid: PARSEID_OK}
	default:
		parseid := PARSEID_COMMAND_NOT_RECOGNISED
		return ParseResult{parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], commandString)}
	}
}

func parseClear(commandString string, words []string) ParseResult {

	command := COMMAND_CLEAR
	switch len(words) {
	case 0:
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: defaultClearCount}
	case 1:
	default:
		parseid := PARSEID_TOO_MANY_ARGUMENTS
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], commandString)}
	}

	number, err := strconv.Atoi(words[0])
	if err != nil {
		parseid := PARSEID_NOT_A_NUMBER
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], words[0])}
	}
	if number < 1 || number > maxClearCount {
		parseid := PARSEID_OUT_OF_RANGE
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], maxClearCount)}
	}
	return ParseResult{command: command, parseid: PARSEID_OK, arguments: number}
}
