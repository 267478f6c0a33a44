package input

// Command is what a key press asks the frame loop to do
type Command int

const (
	// CommandNone is returned when no key, or an unbound key, was pressed
	CommandNone Command = iota
	// CommandToggleRecording starts or stops recording the raw stream
	CommandToggleRecording
	// CommandToggleDebug shows or hides the on-screen log panel
	CommandToggleDebug
	// CommandQuit ends the loop after releasing resources
	CommandQuit
)

func (c Command) String() string {
	switch c {
	case CommandToggleRecording:
		return "toggle-recording"
	case CommandToggleDebug:
		return "toggle-debug"
	case CommandQuit:
		return "quit"
	default:
		return "none"
	}
}

const (
	keyNone   = -1
	keyEscape = 27
)

// ParseKey maps a key code from the display's WaitKey to a command.
// Only the low byte is significant, as with OpenCV key codes.
func ParseKey(key int) Command {
	if key == keyNone {
		return CommandNone
	}

	switch key & 0xFF {
	case 's', 'S':
		return CommandToggleRecording
	case 'd', 'D':
		return CommandToggleDebug
	case 'q', 'Q', keyEscape:
		return CommandQuit
	}

	return CommandNone
}

// HelpLines returns the control hints shown in the help bar
func HelpLines(recordingEnabled bool) []string {
	if !recordingEnabled {
		return []string{"D : Debug log", "Q : Quit"}
	}
	return []string{"S : Start/Stop Recording", "D : Debug log   Q : Quit"}
}
