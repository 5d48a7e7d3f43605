package keyboard

// CharToKey maps printable ASCII characters to their HID usage codes.
// Shifted characters (uppercase, symbols) map to the unshifted key and
// need the Shift modifier, see ShiftChars.
var CharToKey = map[byte]uint8{
	// Lowercase letters
	'a': KeyA, 'b': KeyB, 'c': KeyC, 'd': KeyD, 'e': KeyE, 'f': KeyF, 'g': KeyG,
	'h': KeyH, 'i': KeyI, 'j': KeyJ, 'k': KeyK, 'l': KeyL, 'm': KeyM, 'n': KeyN,
	'o': KeyO, 'p': KeyP, 'q': KeyQ, 'r': KeyR, 's': KeyS, 't': KeyT, 'u': KeyU,
	'v': KeyV, 'w': KeyW, 'x': KeyX, 'y': KeyY, 'z': KeyZ,

	// Uppercase letters (same keys, need shift)
	'A': KeyA, 'B': KeyB, 'C': KeyC, 'D': KeyD, 'E': KeyE, 'F': KeyF, 'G': KeyG,
	'H': KeyH, 'I': KeyI, 'J': KeyJ, 'K': KeyK, 'L': KeyL, 'M': KeyM, 'N': KeyN,
	'O': KeyO, 'P': KeyP, 'Q': KeyQ, 'R': KeyR, 'S': KeyS, 'T': KeyT, 'U': KeyU,
	'V': KeyV, 'W': KeyW, 'X': KeyX, 'Y': KeyY, 'Z': KeyZ,

	// Numbers (top row)
	'1': Key1, '2': Key2, '3': Key3, '4': Key4, '5': Key5,
	'6': Key6, '7': Key7, '8': Key8, '9': Key9, '0': Key0,

	// Shifted number row symbols
	'!': Key1, '@': Key2, '#': Key3, '$': Key4, '%': Key5,
	'^': Key6, '&': Key7, '*': Key8, '(': Key9, ')': Key0,

	// Unshifted symbols
	'-':  KeyMinus,
	'=':  KeyEqual,
	'[':  KeyLeftBrace,
	']':  KeyRightBrace,
	'\\': KeyBackslash,
	';':  KeySemicolon,
	'\'': KeyApostrophe,
	'`':  KeyGrave,
	',':  KeyComma,
	'.':  KeyPeriod,
	'/':  KeySlash,

	// Shifted symbols
	'_': KeyMinus,
	'+': KeyEqual,
	'{': KeyLeftBrace,
	'}': KeyRightBrace,
	'|': KeyBackslash,
	':': KeySemicolon,
	'"': KeyApostrophe,
	'~': KeyGrave,
	'<': KeyComma,
	'>': KeyPeriod,
	'?': KeySlash,

	// Whitespace
	' ':  KeySpace,
	'\n': KeyEnter,
	'\r': KeyEnter,
	'\t': KeyTab,
}

// ShiftChars defines which characters require the Shift modifier.
var ShiftChars = map[byte]bool{
	// Uppercase letters
	'A': true, 'B': true, 'C': true, 'D': true, 'E': true, 'F': true, 'G': true,
	'H': true, 'I': true, 'J': true, 'K': true, 'L': true, 'M': true, 'N': true,
	'O': true, 'P': true, 'Q': true, 'R': true, 'S': true, 'T': true, 'U': true,
	'V': true, 'W': true, 'X': true, 'Y': true, 'Z': true,

	// Shifted number row
	'!': true, '@': true, '#': true, '$': true, '%': true,
	'^': true, '&': true, '*': true, '(': true, ')': true,

	// Shifted symbols
	'_': true, '+': true, '{': true, '}': true, '|': true,
	':': true, '"': true, '~': true, '<': true, '>': true, '?': true,
}

// NameToKey maps lowercase key names to HID usage codes. Used for the
// out-of-band named keys that have no printable representation.
var NameToKey = map[string]uint8{
	"enter":       KeyEnter,
	"return":      KeyEnter,
	"escape":      KeyEscape,
	"esc":         KeyEscape,
	"backspace":   KeyBackspace,
	"tab":         KeyTab,
	"space":       KeySpace,
	"capslock":    KeyCapsLock,
	"printscreen": KeyPrintScreen,
	"scrolllock":  KeyScrollLock,
	"pause":       KeyPause,
	"insert":      KeyInsert,
	"home":        KeyHome,
	"pageup":      KeyPageUp,
	"delete":      KeyDelete,
	"del":         KeyDelete,
	"end":         KeyEnd,
	"pagedown":    KeyPageDown,
	"right":       KeyRight,
	"left":        KeyLeft,
	"down":        KeyDown,
	"up":          KeyUp,

	"f1": KeyF1, "f2": KeyF2, "f3": KeyF3, "f4": KeyF4,
	"f5": KeyF5, "f6": KeyF6, "f7": KeyF7, "f8": KeyF8,
	"f9": KeyF9, "f10": KeyF10, "f11": KeyF11, "f12": KeyF12,

	"leftctrl":   KeyLeftCtrl,
	"leftshift":  KeyLeftShift,
	"leftalt":    KeyLeftAlt,
	"leftgui":    KeyLeftGUI,
	"rightctrl":  KeyRightCtrl,
	"rightshift": KeyRightShift,
	"rightalt":   KeyRightAlt,
	"rightgui":   KeyRightGUI,
}

// NameToMod maps modifier names (and their common aliases) to modifier
// bitmasks for chord parsing. Bare names pick the left-hand variant.
var NameToMod = map[string]uint8{
	"ctrl":       ModLeftCtrl,
	"control":    ModLeftCtrl,
	"leftctrl":   ModLeftCtrl,
	"rightctrl":  ModRightCtrl,
	"shift":      ModLeftShift,
	"leftshift":  ModLeftShift,
	"rightshift": ModRightShift,
	"alt":        ModLeftAlt,
	"leftalt":    ModLeftAlt,
	"rightalt":   ModRightAlt,
	"altgr":      ModRightAlt,
	"gui":        ModLeftGUI,
	"win":        ModLeftGUI,
	"windows":    ModLeftGUI,
	"meta":       ModLeftGUI,
	"cmd":        ModLeftGUI,
	"super":      ModLeftGUI,
	"leftgui":    ModLeftGUI,
	"rightgui":   ModRightGUI,
}

// KeyName maps HID usage codes to human-readable key names.
var KeyName = map[uint8]string{
	// Letters
	KeyA: "A", KeyB: "B", KeyC: "C", KeyD: "D", KeyE: "E", KeyF: "F", KeyG: "G",
	KeyH: "H", KeyI: "I", KeyJ: "J", KeyK: "K", KeyL: "L", KeyM: "M", KeyN: "N",
	KeyO: "O", KeyP: "P", KeyQ: "Q", KeyR: "R", KeyS: "S", KeyT: "T", KeyU: "U",
	KeyV: "V", KeyW: "W", KeyX: "X", KeyY: "Y", KeyZ: "Z",

	// Numbers
	Key1: "1", Key2: "2", Key3: "3", Key4: "4", Key5: "5",
	Key6: "6", Key7: "7", Key8: "8", Key9: "9", Key0: "0",

	// Special keys
	KeyEnter:      "Enter",
	KeyEscape:     "Escape",
	KeyBackspace:  "Backspace",
	KeyTab:        "Tab",
	KeySpace:      "Space",
	KeyMinus:      "Minus",
	KeyEqual:      "Equal",
	KeyLeftBrace:  "LeftBrace",
	KeyRightBrace: "RightBrace",
	KeyBackslash:  "Backslash",
	KeySemicolon:  "Semicolon",
	KeyApostrophe: "Apostrophe",
	KeyGrave:      "Grave",
	KeyComma:      "Comma",
	KeyPeriod:     "Period",
	KeySlash:      "Slash",
	KeyCapsLock:   "CapsLock",

	// Function keys
	KeyF1: "F1", KeyF2: "F2", KeyF3: "F3", KeyF4: "F4", KeyF5: "F5", KeyF6: "F6",
	KeyF7: "F7", KeyF8: "F8", KeyF9: "F9", KeyF10: "F10", KeyF11: "F11", KeyF12: "F12",

	// Control keys
	KeyPrintScreen: "PrintScreen",
	KeyScrollLock:  "ScrollLock",
	KeyPause:       "Pause",
	KeyInsert:      "Insert",
	KeyHome:        "Home",
	KeyPageUp:      "PageUp",
	KeyDelete:      "Delete",
	KeyEnd:         "End",
	KeyPageDown:    "PageDown",

	// Arrow keys
	KeyRight: "Right",
	KeyLeft:  "Left",
	KeyDown:  "Down",
	KeyUp:    "Up",

	// Modifiers
	KeyLeftCtrl:   "LeftCtrl",
	KeyLeftShift:  "LeftShift",
	KeyLeftAlt:    "LeftAlt",
	KeyLeftGUI:    "LeftGUI",
	KeyRightCtrl:  "RightCtrl",
	KeyRightShift: "RightShift",
	KeyRightAlt:   "RightAlt",
	KeyRightGUI:   "RightGUI",
}
