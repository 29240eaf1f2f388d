package main

import "github.com/WangWilly/xChain/pkgs/clipkg/commandline"

func main() {
	commandline.Execute()
}
