package script

import "fmt"

// Opcode selects one script instruction.
type Opcode uint32

// Script opcodes.
const (
	OpPushState  Opcode = 0x01
	OpPopState   Opcode = 0x02
	OpResetState Opcode = 0x03
	OpRunScript  Opcode = 0x04

	OpPaintLinear Opcode = 0x10
	OpPaintBox    Opcode = 0x11
	OpPaintRadial Opcode = 0x12
	OpPaintImage  Opcode = 0x13

	OpAntiAlias   Opcode = 0x20
	OpStrokeWidth Opcode = 0x21
	OpStrokeColor Opcode = 0x22
	OpStrokePaint Opcode = 0x23
	OpFillColor   Opcode = 0x24
	OpFillPaint   Opcode = 0x25
	OpMiterLimit  Opcode = 0x26
	OpLineCap     Opcode = 0x27
	OpLineJoin    Opcode = 0x28
	OpGlobalAlpha Opcode = 0x29

	OpScissor          Opcode = 0x30
	OpIntersectScissor Opcode = 0x31
	OpResetScissor     Opcode = 0x32

	OpPathBegin   Opcode = 0x40
	OpMoveTo      Opcode = 0x41
	OpLineTo      Opcode = 0x42
	OpBezierTo    Opcode = 0x43
	OpQuadraticTo Opcode = 0x44
	OpArcTo       Opcode = 0x45
	OpPathClose   Opcode = 0x46
	OpPathWinding Opcode = 0x47
	OpFill        Opcode = 0x48
	OpStroke      Opcode = 0x49

	OpTriangle     Opcode = 0x50
	OpArc          Opcode = 0x51
	OpRect         Opcode = 0x52
	OpRoundRect    Opcode = 0x53
	OpRoundRectVar Opcode = 0x54
	OpEllipse      Opcode = 0x55
	OpCircle       Opcode = 0x56
	OpSector       Opcode = 0x57
	OpText         Opcode = 0x58

	OpTxReset     Opcode = 0x60
	OpTxIdentity  Opcode = 0x61
	OpTxMatrix    Opcode = 0x62
	OpTxTranslate Opcode = 0x63
	OpTxScale     Opcode = 0x64
	OpTxRotate    Opcode = 0x65
	OpTxSkewX     Opcode = 0x66
	OpTxSkewY     Opcode = 0x67

	OpFont       Opcode = 0x70
	OpFontBlur   Opcode = 0x71
	OpFontSize   Opcode = 0x72
	OpTextAlign  Opcode = 0x73
	OpTextHeight Opcode = 0x74

	OpTerminate Opcode = 0xFF
)

var opNames = map[Opcode]string{
	OpPushState:        "push_state",
	OpPopState:         "pop_state",
	OpResetState:       "reset_state",
	OpRunScript:        "run_script",
	OpPaintLinear:      "paint_linear",
	OpPaintBox:         "paint_box",
	OpPaintRadial:      "paint_radial",
	OpPaintImage:       "paint_image",
	OpAntiAlias:        "anti_alias",
	OpStrokeWidth:      "stroke_width",
	OpStrokeColor:      "stroke_color",
	OpStrokePaint:      "stroke_paint",
	OpFillColor:        "fill_color",
	OpFillPaint:        "fill_paint",
	OpMiterLimit:       "miter_limit",
	OpLineCap:          "line_cap",
	OpLineJoin:         "line_join",
	OpGlobalAlpha:      "global_alpha",
	OpScissor:          "scissor",
	OpIntersectScissor: "intersect_scissor",
	OpResetScissor:     "reset_scissor",
	OpPathBegin:        "path_begin",
	OpMoveTo:           "move_to",
	OpLineTo:           "line_to",
	OpBezierTo:         "bezier_to",
	OpQuadraticTo:      "quadratic_to",
	OpArcTo:            "arc_to",
	OpPathClose:        "path_close",
	OpPathWinding:      "path_winding",
	OpFill:             "fill",
	OpStroke:           "stroke",
	OpTriangle:         "triangle",
	OpArc:              "arc",
	OpRect:             "rect",
	OpRoundRect:        "round_rect",
	OpRoundRectVar:     "round_rect_var",
	OpEllipse:          "ellipse",
	OpCircle:           "circle",
	OpSector:           "sector",
	OpText:             "text",
	OpTxReset:          "tx_reset",
	OpTxIdentity:       "tx_identity",
	OpTxMatrix:         "tx_matrix",
	OpTxTranslate:      "tx_translate",
	OpTxScale:          "tx_scale",
	OpTxRotate:         "tx_rotate",
	OpTxSkewX:          "tx_skew_x",
	OpTxSkewY:          "tx_skew_y",
	OpFont:             "font",
	OpFontBlur:         "font_blur",
	OpFontSize:         "font_size",
	OpTextAlign:        "text_align",
	OpTextHeight:       "text_height",
	OpTerminate:        "terminate",
}

// String returns the opcode's name, or its hex value if it is unknown.
func (op Opcode) String() string {
	if n, ok := opNames[op]; ok {
		return n
	}
	return fmt.Sprintf("0x%X", uint32(op))
}

// Known reports whether op is a defined script opcode.
func (op Opcode) Known() bool {
	_, ok := opNames[op]
	return ok
}
