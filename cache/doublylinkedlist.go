package cache

// node is an element of the recency list.
type node[T any] struct {
	data T
	prev *node[T]
	next *node[T]
}

// doublyLinkedList orders keys from most (head) to least (tail) recently used.
type doublyLinkedList[T any] struct {
	head *node[T]
	tail *node[T]
	size int
}

func newDoublyLinkedList[T any]() *doublyLinkedList[T] {
	return &doublyLinkedList[T]{}
}

func (dll *doublyLinkedList[T]) count() int {
	return dll.size
}

func (dll *doublyLinkedList[T]) isEmpty() bool {
	return dll.head == nil
}

// addToHead inserts data at the head and returns its node.
func (dll *doublyLinkedList[T]) addToHead(data T) *node[T] {
	n := &node[T]{data: data, next: dll.head}
	if dll.head != nil {
		dll.head.prev = n
	} else {
		dll.tail = n
	}
	dll.head = n
	dll.size++
	return n
}

// moveToHead relinks n as the head without allocating.
func (dll *doublyLinkedList[T]) moveToHead(n *node[T]) {
	if n == nil || n == dll.head {
		return
	}
	dll.delete(n)
	n.next = dll.head
	if dll.head != nil {
		dll.head.prev = n
	} else {
		dll.tail = n
	}
	dll.head = n
	dll.size++
}

// deleteFromTail removes and returns the tail's data.
func (dll *doublyLinkedList[T]) deleteFromTail() (T, bool) {
	var d T
	if dll.isEmpty() {
		return d, false
	}
	d = dll.tail.data
	if dll.head == dll.tail {
		dll.head = nil
		dll.tail = nil
	} else {
		dll.tail = dll.tail.prev
		dll.tail.next = nil
	}
	dll.size--
	return d, true
}

// delete unchains n from the list.
func (dll *doublyLinkedList[T]) delete(n *node[T]) bool {
	if n == nil {
		return false
	}
	if n == dll.head {
		dll.head = n.next
	}
	if n == dll.tail {
		dll.tail = n.prev
	}
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	n.next = nil
	n.prev = nil
	dll.size--
	return true
}
