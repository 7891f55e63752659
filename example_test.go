package reactive_test

import (
	"fmt"

	"github.com/AnatoleLucet/reactive"
)

func ExampleWatch() {
	state := reactive.Reactive(map[string]any{"count": 0})

	reactive.Watch(func() int {
		return state.Get("count").(int)
	}, func(value, old int) {
		fmt.Printf("count changed from %d to %d\n", old, value)
	})

	state.Set("count", 1)
	state.Set("count", 2)
	reactive.Tick()

	// Output:
	// count changed from 0 to 2
}

func ExampleNewComputed() {
	state := reactive.Reactive(map[string]any{"first": "Ada", "last": "Lovelace"})

	fullName := reactive.NewComputed(func() string {
		return fmt.Sprintf("%s %s", state.Get("first"), state.Get("last"))
	})

	fmt.Println(fullName.Get())
	state.Set("last", "Byron")
	fmt.Println(fullName.Get())

	// Output:
	// Ada Lovelace
	// Ada Byron
}

func ExampleOwner_Mount() {
	app := reactive.NewOwner("app")
	data := reactive.NewObject(map[string]any{"todos": []any{"write tests"}})
	app.SetData(data)

	app.Mount(func() error {
		todos := data.Get("todos").(*reactive.Array)
		fmt.Printf("rendering %d todo(s)\n", todos.Len())
		return nil
	})
	app.OnUpdated(func() { fmt.Println("updated") })

	data.Get("todos").(*reactive.Array).Push("ship it")
	reactive.Tick()

	app.Destroy()

	// Output:
	// rendering 1 todo(s)
	// rendering 2 todo(s)
	// updated
}

func ExampleNextTick() {
	state := reactive.Reactive(map[string]any{"msg": "hello"})

	reactive.Effect(func() {
		fmt.Println("effect:", state.Get("msg"))
	})

	state.Set("msg", "world")
	reactive.NextTick(func() { fmt.Println("flushed") })
	reactive.Tick()

	// Output:
	// effect: hello
	// effect: world
	// flushed
}
