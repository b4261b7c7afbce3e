//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/shapeflow/shapeflow/backend-go/internal/engine"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine()

	puzzleEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	puzzleEngine.Set("startGame", js.FuncOf(startGame))
	puzzleEngine.Set("selectLevel", js.FuncOf(selectLevel))
	puzzleEngine.Set("rotate", js.FuncOf(rotate))
	puzzleEngine.Set("restart", js.FuncOf(restart))
	puzzleEngine.Set("advance", js.FuncOf(advance))
	puzzleEngine.Set("generate", js.FuncOf(generate))
	puzzleEngine.Set("setSelection", js.FuncOf(setSelection))

	// --- Queries (frontend ← engine) ---
	puzzleEngine.Set("render", js.FuncOf(render))
	puzzleEngine.Set("hitTest", js.FuncOf(hitTest))
	puzzleEngine.Set("getState", js.FuncOf(getState))
	puzzleEngine.Set("getPuzzle", js.FuncOf(getPuzzle))
	puzzleEngine.Set("getLevelConfig", js.FuncOf(getLevelConfig))
	puzzleEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	puzzleEngine.Set("getSelection", js.FuncOf(getSelection))

	js.Global().Set("shapeflowEngine", puzzleEngine)
	js.Global().Set("shapeflowWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fail(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func missing(what string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": "missing " + what})
}

// --- Command Handlers ---

func startGame(this js.Value, args []js.Value) interface{} {
	level := 1
	if len(args) > 0 && args[0].Type() == js.TypeNumber {
		level = args[0].Int()
	}
	if err := eng.StartGame(level); err != nil {
		return fail(err)
	}
	return ok()
}

func selectLevel(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("level")
	}
	if err := eng.SelectLevel(args[0].Int()); err != nil {
		return fail(err)
	}
	return ok()
}

func rotate(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("piece id")
	}
	solved, err := eng.Rotate(args[0].String())
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "solved": solved})
}

func restart(this js.Value, args []js.Value) interface{} {
	if err := eng.Restart(); err != nil {
		return fail(err)
	}
	return ok()
}

func advance(this js.Value, args []js.Value) interface{} {
	eng.Advance()
	return ok()
}

func generate(this js.Value, args []js.Value) interface{} {
	if err := eng.Generate(); err != nil {
		return fail(err)
	}
	return ok()
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		eng.SetSelection(nil)
		return nil
	}

	arr := args[0]
	if arr.Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}

	ids := make([]string, arr.Length())
	for i := range ids {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func getState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetState())
}

func getPuzzle(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetPuzzle())
}

func getLevelConfig(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("{}")
	}
	return js.ValueOf(eng.GetLevelConfig(args[0].Int()))
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}
