// Package arcd compresses byte streams with the binary arithmetic coder of package ac/witten.
//
// Compress and Decompress frame the coded body with a header that records the model, the coder
// precision and the input size. Writer and Reader instead end the stream with an extra EOS symbol,
// which suits data whose length is not known in advance.
//
// Below is an example of compressing Lincoln's Gettysburg address:
//
//	go run compress/main.go -method ctw testdata/gettysburg.txt > gettys.arcd
//	cat gettys.arcd | go run decompress/main.go > gettys.txt
//	diff testdata/gettysburg.txt gettys.txt
package arcd
