package driver

import "fmt"

// Command is the opcode at the start of every inbound frame.
type Command uint32

// Inbound commands.
const (
	CmdRenderScript   Command = 0x01
	CmdClearScript    Command = 0x02
	CmdSetRoot        Command = 0x03
	CmdClearColor     Command = 0x05
	CmdInputFlags     Command = 0x0A
	CmdQuit           Command = 0x20
	CmdQueryStats     Command = 0x21
	CmdReshape        Command = 0x22
	CmdReposition     Command = 0x23
	CmdFocus          Command = 0x24
	CmdIconify        Command = 0x25
	CmdMaximize       Command = 0x26
	CmdRestore        Command = 0x27
	CmdShow           Command = 0x28
	CmdHide           Command = 0x29
	CmdFreeTexture    Command = 0x33
	CmdPutTextureBlob Command = 0x34
	CmdLoadFontFile   Command = 0x37
	CmdLoadFontBlob   Command = 0x38
	CmdCrash          Command = 0xFE
)

var commandNames = map[Command]string{
	CmdRenderScript:   "render_script",
	CmdClearScript:    "clear_script",
	CmdSetRoot:        "set_root",
	CmdClearColor:     "clear_color",
	CmdInputFlags:     "input_flags",
	CmdQuit:           "quit",
	CmdQueryStats:     "query_stats",
	CmdReshape:        "reshape",
	CmdReposition:     "reposition",
	CmdFocus:          "focus",
	CmdIconify:        "iconify",
	CmdMaximize:       "maximize",
	CmdRestore:        "restore",
	CmdShow:           "show",
	CmdHide:           "hide",
	CmdFreeTexture:    "free_texture",
	CmdPutTextureBlob: "put_texture_blob",
	CmdLoadFontFile:   "load_font_file",
	CmdLoadFontBlob:   "load_font_blob",
	CmdCrash:          "crash",
}

// String returns the command name, or its hex value if unknown.
func (c Command) String() string {
	if n, ok := commandNames[c]; ok {
		return n
	}
	return fmt.Sprintf("0x%X", uint32(c))
}

// Outcome tells the main loop what a dispatched frame requires.
type Outcome int

const (
	// Continue needs nothing further.
	Continue Outcome = iota
	// Redraw asks for a render pass.
	Redraw
	// Terminate stops the main loop.
	Terminate
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Redraw:
		return "redraw"
	case Terminate:
		return "terminate"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}
