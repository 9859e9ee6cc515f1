// Command cncsim simulates a CNC machine controller.
package main

import "github.com/sarchlab/cncsim/cncsim/cmd"

func main() {
	cmd.Execute()
}
