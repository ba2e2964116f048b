// Command lang-assist translates and corrects text, explains its grammar,
// keeps study notes in a vector index and reads them aloud.
package main

func main() {
	Execute()
}
