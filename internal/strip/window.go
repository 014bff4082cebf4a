package strip

// Unlimited disables the maximum visible image cap.
const Unlimited = -1

// bufferSlots are the look-behind and look-ahead entries added around the
// visible part of every window.
const bufferSlots = 2

// ComputeWindow returns the circular run of images starting one slot before
// cursor. Its length is min(capacity, maxAllowed, len(images)) + 2; a negative
// maxAllowed means unlimited. Images repeat when the window is longer than the
// registry.
func ComputeWindow(images []Image, cursor, capacity, maxAllowed int) []Image {
	n := len(images)
	if n == 0 {
		return nil
	}
	if capacity < 0 {
		capacity = 0
	}

	count := min(capacity, n)
	if maxAllowed >= 0 {
		count = min(count, maxAllowed)
	}
	count += bufferSlots

	index := wrap(wrap(cursor, n)-1, n)
	window := make([]Image, 0, count)
	for range count {
		window = append(window, images[index])
		index++
		if index > n-1 {
			index = 0
		}
	}
	return window
}

// VisibleSet drops the two buffer entries of a window.
func VisibleSet(window []Image) []Image {
	if len(window) <= bufferSlots {
		return nil
	}
	return window[1 : len(window)-1]
}

// Indices returns the image indices of a window in order.
func Indices(window []Image) []int {
	if len(window) == 0 {
		return nil
	}
	out := make([]int, len(window))
	for i, img := range window {
		out[i] = img.Index
	}
	return out
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
