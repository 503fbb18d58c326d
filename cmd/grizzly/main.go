// grizzly CLI - local HTTPS proxy for front-end development
package main

import "github.com/gooddata/grizzly/pkg/cli"

func main() {
	cli.Execute()
}
