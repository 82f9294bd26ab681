package main

// Register the C++ parser
import (
	_ "github.com/roveo/cppgen/languages/cpp"
)
