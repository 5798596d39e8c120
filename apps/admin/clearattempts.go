package main

import "fmt"

func (cli *commandLine) clearAttempts(owner string) error {
	if err := cli.attSvc.ClearAllForOwner(owner); err != nil {
		return err
	}
	fmt.Printf("cleared all stored attempts for %q\n", owner)
	return nil
}
