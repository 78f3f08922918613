package event

// MsgCommand is a directive inside a message. Messages are command strings:
// text runs interleaved with control codes that drive the message window.
type MsgCommand interface {
	isMsgCommand()
}

// MsgText displays a run of text. The bytes are CP932-encoded.
type MsgText struct {
	Text []byte
}

// MsgFormat substitutes a printf-style format string.
type MsgFormat struct {
	Format []byte
}

// MsgSpeed sets the text display speed.
type MsgSpeed struct {
	Speed uint8
}

// MsgWaitKind identifies what a wait directive waits for.
type MsgWaitKind uint8

const (
	MsgWaitAtcMenu MsgWaitKind = iota + 1
	MsgWaitSuitMenu
	MsgWaitLeftPlug
	MsgWaitRightPlug
	MsgWaitTime
)

// MsgWait pauses the message.
type MsgWait struct {
	Kind MsgWaitKind
	Time uint8
}

// MsgAnim plays an animation while the message displays.
type MsgAnim struct {
	Flags uint8
	Obj   int16
	Anim  int32
}

// MsgSfx plays or adjusts a sound effect.
type MsgSfx struct {
	Id    int32
	Cmd   uint8
	Value int32
}

// MsgVoice plays a voice clip.
type MsgVoice struct {
	Id uint8
}

// MsgDefault sets a default value for a question or number input.
type MsgDefault struct {
	Flags int32
	Index int32
}

// MsgNumInput prompts the player to enter a number. Writes the entered value
// to the primary result register.
type MsgNumInput struct {
	Digits   uint8
	Editable uint8
	Selected uint8
}

// MsgQuestion prompts the player with a yes/no question. Writes the choice to
// the primary result register.
type MsgQuestion struct {
	Flags   uint8
	Default uint8
}

// MsgStay keeps the message window open after the command finishes.
type MsgStay struct{}

// MsgRotation sets the text rotation.
type MsgRotation struct {
	Rotation int16
}

// MsgScale sets the text scale.
type MsgScale struct {
	X int16
	Y int16
}

// MsgColor sets the text color by palette index.
type MsgColor struct {
	Color uint8
}

// MsgNewline starts a new line.
type MsgNewline struct{}

// MsgNewlineVt starts a new line and scrolls.
type MsgNewlineVt struct{}

// MsgCenter toggles text centering.
type MsgCenter struct {
	Enabled bool
}

func (MsgText) isMsgCommand()      {}
func (MsgFormat) isMsgCommand()    {}
func (MsgSpeed) isMsgCommand()     {}
func (MsgWait) isMsgCommand()      {}
func (MsgAnim) isMsgCommand()      {}
func (MsgSfx) isMsgCommand()       {}
func (MsgVoice) isMsgCommand()     {}
func (MsgDefault) isMsgCommand()   {}
func (MsgNumInput) isMsgCommand()  {}
func (MsgQuestion) isMsgCommand()  {}
func (MsgStay) isMsgCommand()      {}
func (MsgRotation) isMsgCommand()  {}
func (MsgScale) isMsgCommand()     {}
func (MsgColor) isMsgCommand()     {}
func (MsgNewline) isMsgCommand()   {}
func (MsgNewlineVt) isMsgCommand() {}
func (MsgCenter) isMsgCommand()    {}

// MsgArgs is the payload of a msg() or select() command.
type MsgArgs struct {
	Commands []MsgCommand
}
