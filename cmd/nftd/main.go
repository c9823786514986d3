package main

import "github.com/Natashkinsasha/near-nft-template/internal/cli"

func main() {
	cli.Execute()
}
