package main

import (
	"context"

	"stockroom/cmd"
)

func main() {
	cmd.Execute(context.Background())
}
