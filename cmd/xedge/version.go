package main

import (
	"context"
	"fmt"
)

// VersionCmd is 'xedge version'.
type VersionCmd struct{}

func (c *VersionCmd) Run(_ context.Context) error {
	fmt.Println(versionString())
	return nil
}
