// Command frontierd serves a url-frontier scheduling core.
package main

import "github.com/MattiSG/url-frontier/cmd"

func main() {
	cmd.Execute()
}
