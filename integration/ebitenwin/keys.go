package ebitenwin

import "github.com/hajimehoshi/ebiten/v2"

// Key codes and modifier bits as the caller expects them. They follow the
// GLFW numbering the Scenic driver protocol was defined against.
const (
	keyUnknown int32 = -1

	actionRelease int32 = 0
	actionPress   int32 = 1
	actionRepeat  int32 = 2

	modShift int32 = 0x01
	modCtrl  int32 = 0x02
	modAlt   int32 = 0x04
	modSuper int32 = 0x08
)

var namedKeys = map[ebiten.Key]int32{
	ebiten.KeySpace:        32,
	ebiten.KeyQuote:        39,
	ebiten.KeyComma:        44,
	ebiten.KeyMinus:        45,
	ebiten.KeyPeriod:       46,
	ebiten.KeySlash:        47,
	ebiten.KeySemicolon:    59,
	ebiten.KeyEqual:        61,
	ebiten.KeyBracketLeft:  91,
	ebiten.KeyBackslash:    92,
	ebiten.KeyBracketRight: 93,
	ebiten.KeyBackquote:    96,

	ebiten.KeyEscape:      256,
	ebiten.KeyEnter:       257,
	ebiten.KeyTab:         258,
	ebiten.KeyBackspace:   259,
	ebiten.KeyInsert:      260,
	ebiten.KeyDelete:      261,
	ebiten.KeyArrowRight:  262,
	ebiten.KeyArrowLeft:   263,
	ebiten.KeyArrowDown:   264,
	ebiten.KeyArrowUp:     265,
	ebiten.KeyPageUp:      266,
	ebiten.KeyPageDown:    267,
	ebiten.KeyHome:        268,
	ebiten.KeyEnd:         269,
	ebiten.KeyCapsLock:    280,
	ebiten.KeyScrollLock:  281,
	ebiten.KeyNumLock:     282,
	ebiten.KeyPrintScreen: 283,
	ebiten.KeyPause:       284,

	ebiten.KeyNumpadDecimal:  330,
	ebiten.KeyNumpadDivide:   331,
	ebiten.KeyNumpadMultiply: 332,
	ebiten.KeyNumpadSubtract: 333,
	ebiten.KeyNumpadAdd:      334,
	ebiten.KeyNumpadEnter:    335,
	ebiten.KeyNumpadEqual:    336,

	ebiten.KeyShiftLeft:    340,
	ebiten.KeyControlLeft:  341,
	ebiten.KeyAltLeft:      342,
	ebiten.KeyMetaLeft:     343,
	ebiten.KeyShiftRight:   344,
	ebiten.KeyControlRight: 345,
	ebiten.KeyAltRight:     346,
	ebiten.KeyMetaRight:    347,
	ebiten.KeyContextMenu:  348,
}

func init() {
	letters := []ebiten.Key{
		ebiten.KeyA, ebiten.KeyB, ebiten.KeyC, ebiten.KeyD, ebiten.KeyE, ebiten.KeyF,
		ebiten.KeyG, ebiten.KeyH, ebiten.KeyI, ebiten.KeyJ, ebiten.KeyK, ebiten.KeyL,
		ebiten.KeyM, ebiten.KeyN, ebiten.KeyO, ebiten.KeyP, ebiten.KeyQ, ebiten.KeyR,
		ebiten.KeyS, ebiten.KeyT, ebiten.KeyU, ebiten.KeyV, ebiten.KeyW, ebiten.KeyX,
		ebiten.KeyY, ebiten.KeyZ,
	}
	digits := []ebiten.Key{
		ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
		ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
	}
	numpad := []ebiten.Key{
		ebiten.KeyNumpad0, ebiten.KeyNumpad1, ebiten.KeyNumpad2, ebiten.KeyNumpad3, ebiten.KeyNumpad4,
		ebiten.KeyNumpad5, ebiten.KeyNumpad6, ebiten.KeyNumpad7, ebiten.KeyNumpad8, ebiten.KeyNumpad9,
	}
	functions := []ebiten.Key{
		ebiten.KeyF1, ebiten.KeyF2, ebiten.KeyF3, ebiten.KeyF4, ebiten.KeyF5, ebiten.KeyF6,
		ebiten.KeyF7, ebiten.KeyF8, ebiten.KeyF9, ebiten.KeyF10, ebiten.KeyF11, ebiten.KeyF12,
	}
	for base, keys := range map[int32][]ebiten.Key{65: letters, 48: digits, 320: numpad, 290: functions} {
		for i, k := range keys {
			namedKeys[k] = base + int32(i)
		}
	}
}

// keyCode converts an ebiten key to the caller's key code.
func keyCode(k ebiten.Key) int32 {
	if c, ok := namedKeys[k]; ok {
		return c
	}
	return keyUnknown
}

// mouseButton converts an ebiten button to the caller's numbering
// (left 0, right 1, middle 2).
func mouseButton(b ebiten.MouseButton) int32 {
	switch b {
	case ebiten.MouseButtonLeft:
		return 0
	case ebiten.MouseButtonRight:
		return 1
	case ebiten.MouseButtonMiddle:
		return 2
	}
	return int32(b)
}

// modifierBits folds pressed modifier keys into a bit set.
func modifierBits(pressed func(ebiten.Key) bool) int32 {
	var mods int32
	if pressed(ebiten.KeyShift) {
		mods |= modShift
	}
	if pressed(ebiten.KeyControl) {
		mods |= modCtrl
	}
	if pressed(ebiten.KeyAlt) {
		mods |= modAlt
	}
	if pressed(ebiten.KeyMeta) {
		mods |= modSuper
	}
	return mods
}

// Key repeat timing, in ticks.
const (
	repeatDelay    = 30
	repeatInterval = 3
)

// repeats reports whether a key held for d ticks fires a repeat this tick.
func repeats(d int) bool {
	return d > repeatDelay && (d-repeatDelay)%repeatInterval == 0
}
