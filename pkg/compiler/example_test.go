package compiler_test

import (
	"fmt"

	"github.com/matzehuels/schemaviz/pkg/compiler"
	"github.com/matzehuels/schemaviz/pkg/schema"
)

func ExampleCompile() {
	s := schema.New()
	_ = s.AddRecord("Server",
		schema.Field{Name: "listener", Type: "*Listener"},
		schema.Field{Name: "handler", Type: "*const fn (*Request) void"},
	)
	_ = s.AddRecord("Listener", schema.Field{Name: "port", Type: "u16"})

	g, err := compiler.Compile(s)
	if err != nil {
		panic(err)
	}
	for _, n := range g.Nodes {
		fmt.Println(n.ID, n.Name, n.Labels)
	}
	for _, e := range g.Edges {
		fmt.Printf("%s:f%d -> %s\n", e.From, e.Slot, e.To)
	}
	// Output:
	// struct0 Server [listener: *Listener handler: (Function)]
	// struct1 Listener [port: u16]
	// struct0:f0 -> struct1
}

func ExampleStripDecorators() {
	fmt.Println(compiler.StripDecorators("?*[]Node"))
	fmt.Println(compiler.StripDecorators("[Post!]!"))
	// Output:
	// Node
	// Post
}

func ExampleFocus() {
	s := schema.New()
	_ = s.AddRecord("A", schema.Field{Name: "b", Type: "*B"})
	_ = s.AddRecord("B", schema.Field{Name: "c", Type: "*C"})
	_ = s.AddRecord("C")

	g, _ := compiler.Compile(s)
	sub, _ := compiler.Focus(g, "B", 0)
	for _, n := range sub.Nodes {
		fmt.Println(n.ID, n.Name)
	}
	// Output:
	// struct1 B
	// struct2 C
}
